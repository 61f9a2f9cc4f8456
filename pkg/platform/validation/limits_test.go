package validation

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "elan/pkg/domain-errors"
)

func TestCheckStringLength_JourneyAndInviteLimits(t *testing.T) {
	cases := []struct {
		field string
		max   int
	}{
		{"title", MaxTitleLength},
		{"narrative", MaxNarrativeLength},
		{"category", MaxLabelLength},
		{"reason", MaxReasonLength},
		{"name", MaxNameLength},
		{"code", MaxInviteCodeLength},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			assert.NoError(t, CheckStringLength(tc.field, "", tc.max))
			assert.NoError(t, CheckStringLength(tc.field, strings.Repeat("é", tc.max/2), tc.max))
			assert.NoError(t, CheckStringLength(tc.field, strings.Repeat("a", tc.max), tc.max))

			err := CheckStringLength(tc.field, strings.Repeat("a", tc.max+1), tc.max)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Equal(t, tc.field+" exceeds max length of "+strconv.Itoa(tc.max), err.Error())
		})
	}
}

func TestCheckStringLength_CountsBytes(t *testing.T) {
	// "é" is two bytes, so a title of MaxTitleLength/2+1 of them is over the limit.
	title := strings.Repeat("é", MaxTitleLength/2+1)
	assert.Error(t, CheckStringLength("title", title, MaxTitleLength))
}

func TestCheckEachStringLength_NarrativeSections(t *testing.T) {
	ok := []string{"Arrival in Reykjavik", strings.Repeat("n", MaxNarrativeLength)}
	assert.NoError(t, CheckEachStringLength("narrative", ok, MaxNarrativeLength))
	assert.NoError(t, CheckEachStringLength("narrative", nil, MaxNarrativeLength))

	tooLong := append(ok, strings.Repeat("n", MaxNarrativeLength+1))
	err := CheckEachStringLength("narrative", tooLong, MaxNarrativeLength)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestCheckSliceCount_ClientBooksAndScopes(t *testing.T) {
	assert.NoError(t, CheckSliceCount("client_ids", MaxAssignedClients, MaxAssignedClients))
	assert.NoError(t, CheckSliceCount("entity_ids", 0, MaxScopeEntities))

	err := CheckSliceCount("client_ids", MaxAssignedClients+1, MaxAssignedClients)
	require.Error(t, err)
	assert.Equal(t, "too many client_ids: max 500 allowed", err.Error())

	err = CheckSliceCount("entity_ids", MaxScopeEntities+1, MaxScopeEntities)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

