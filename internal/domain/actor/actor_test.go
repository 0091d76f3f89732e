package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collab-hub/collab-portal/internal/domain/shared"
)

func TestParseRole_Variants(t *testing.T) {
	cases := map[string]Role{
		"student":           RoleStudent,
		"Student":           RoleStudent,
		"  STUDENT  ":       RoleStudent,
		"academia":          RoleAcademia,
		"Academia Official": RoleAcademia,
		"academia official": RoleAcademia,
		"industry":          RoleIndustry,
		"Industry Official": RoleIndustry,
		"INDUSTRY OFFICIAL": RoleIndustry,
	}

	for raw, want := range cases {
		got, err := ParseRole(raw)
		require.NoError(t, err, "raw=%q", raw)
		assert.Equal(t, want, got, "raw=%q", raw)
	}
}

func TestParseRole_Unknown(t *testing.T) {
	_, err := ParseRole("admin")
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrUnknownRole)
	assert.True(t, shared.IsInvalidInput(err))
}

func TestNew_NormalizesRole(t *testing.T) {
	a, err := New("u-1", "Dana", "Industry Official")
	require.NoError(t, err)

	assert.Equal(t, RoleIndustry, a.Role)
	assert.False(t, a.IsStudent())
	assert.True(t, a.IsPosterRole())
}

func TestNew_RequiresID(t *testing.T) {
	_, err := New("", "Dana", "student")
	assert.True(t, shared.IsInvalidInput(err))
}
