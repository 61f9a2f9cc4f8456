package rbac

// grants maps a resource to the actions a role holds on it.
type grants map[Resource][]Action

var (
	uhniGrants = grants{
		ResourceJourney:  {ActionRead, ActionWrite, ActionShare, ActionDelete, ActionExport},
		ResourceMemory:   {ActionRead, ActionWrite, ActionShare, ActionDelete},
		ResourceVault:    {ActionRead, ActionWrite, ActionShare},
		ResourceContract: {ActionRead},
		ResourceRisk:     {ActionRead},
		ResourceMessage:  {ActionRead, ActionWrite},
		ResourceUser:     {ActionRead, ActionConfigure},
		ResourceSettings: {ActionRead, ActionWrite},
		ResourceReport:   {ActionRead},
	}

	// Spouse is read/share-only.
	spouseGrants = grants{
		ResourceJourney:  {ActionRead, ActionShare},
		ResourceMemory:   {ActionRead, ActionShare},
		ResourceVault:    {ActionRead},
		ResourceMessage:  {ActionRead},
		ResourceSettings: {ActionRead},
	}

	legacyHeirGrants = grants{
		ResourceJourney: {ActionRead},
		ResourceMemory:  {ActionRead},
		ResourceVault:   {ActionRead},
	}

	elanAdvisorGrants = grants{
		ResourceJourney:  {ActionRead, ActionWrite, ActionApprove},
		ResourceMemory:   {ActionRead},
		ResourceClient:   {ActionRead},
		ResourceRisk:     {ActionRead},
		ResourceContract: {ActionRead, ActionWrite},
		ResourceMessage:  {ActionRead, ActionWrite},
		ResourceReport:   {ActionRead, ActionWrite},
	}

	relationshipManagerGrants = grants{
		ResourceJourney:  {ActionRead, ActionWrite, ActionApprove},
		ResourceClient:   {ActionRead, ActionWrite},
		ResourceRisk:     {ActionRead},
		ResourceContract: {ActionRead, ActionWrite},
		ResourceMemory:   {ActionRead},
		ResourceReport:   {ActionRead, ActionWrite},
		ResourceMessage:  {ActionRead, ActionWrite},
	}

	privateBankerGrants = grants{
		ResourceJourney:  {ActionRead, ActionWrite, ActionApprove},
		ResourceClient:   {ActionRead, ActionWrite},
		ResourceRisk:     {ActionRead, ActionWrite},
		ResourceVault:    {ActionRead},
		ResourceContract: {ActionRead},
		ResourceReport:   {ActionRead},
		ResourceMessage:  {ActionRead, ActionWrite},
	}

	familyOfficeDirectorGrants = grants{
		ResourceJourney:     {ActionRead},
		ResourceClient:      {ActionRead},
		ResourceRisk:        {ActionRead},
		ResourceMemory:      {ActionRead},
		ResourceVault:       {ActionRead},
		ResourceReport:      {ActionRead, ActionExport},
		ResourceInstitution: {ActionRead},
	}

	complianceOfficerGrants = grants{
		ResourceJourney:  {ActionRead, ActionApprove},
		ResourceClient:   {ActionRead},
		ResourceRisk:     {ActionRead, ActionWrite},
		ResourceContract: {ActionRead},
		ResourceAudit:    {ActionRead, ActionExport},
		ResourceReport:   {ActionRead, ActionExport},
	}

	institutionalAdminGrants = grants{
		ResourceInstitution: {ActionRead, ActionConfigure},
		ResourceUser:        {ActionRead, ActionWrite, ActionConfigure},
		ResourceClient:      {ActionRead, ActionWrite},
		ResourceJourney:     {ActionRead, ActionWrite},
		ResourceReport:      {ActionRead},
		ResourceAudit:       {ActionRead},
		ResourceSettings:    {ActionRead, ActionWrite, ActionConfigure},
	}

	uhniPortalGrants = grants{
		ResourceJourney: {ActionRead, ActionWrite},
		ResourceMemory:  {ActionRead, ActionWrite},
		ResourceVault:   {ActionRead},
		ResourceReport:  {ActionRead},
		ResourceMessage: {ActionRead, ActionWrite},
	}

	// Audit is append-only for everyone, super admin included.
	superAdminGrants = grants{
		ResourceJourney:     {ActionRead, ActionWrite, ActionApprove, ActionDelete, ActionExport},
		ResourceClient:      {ActionRead, ActionWrite, ActionDelete, ActionExport},
		ResourceVault:       {ActionRead, ActionConfigure},
		ResourceRisk:        {ActionRead, ActionWrite, ActionConfigure},
		ResourceContract:    {ActionRead, ActionWrite, ActionApprove},
		ResourceInstitution: {ActionRead, ActionWrite, ActionConfigure, ActionDelete},
		ResourceMemory:      {ActionRead, ActionDelete},
		ResourceAudit:       {ActionRead, ActionExport},
		ResourceUser:        {ActionRead, ActionWrite, ActionConfigure, ActionDelete},
		ResourceReport:      {ActionRead, ActionWrite, ActionExport},
		ResourceSettings:    {ActionRead, ActionWrite, ActionConfigure},
		ResourceMessage:     {ActionRead},
	}
)

// tableFor selects the matrix partition for (role, domain). A role only
// holds permissions inside its home domain; every other pairing is empty.
func tableFor(role Role, domain Domain) grants {
	if role.Domain() != domain {
		return nil
	}
	switch role {
	case RoleUHNI:
		return uhniGrants
	case RoleSpouse:
		return spouseGrants
	case RoleLegacyHeir:
		return legacyHeirGrants
	case RoleElanAdvisor:
		return elanAdvisorGrants
	case RoleRelationshipManager:
		return relationshipManagerGrants
	case RolePrivateBanker:
		return privateBankerGrants
	case RoleFamilyOfficeDirector:
		return familyOfficeDirectorGrants
	case RoleComplianceOfficer:
		return complianceOfficerGrants
	case RoleInstitutionalAdmin:
		return institutionalAdminGrants
	case RoleUHNIPortal:
		return uhniPortalGrants
	case RoleSuperAdmin:
		return superAdminGrants
	}
	return nil
}
