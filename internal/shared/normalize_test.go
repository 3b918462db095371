package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeConditionStripsAccents(t *testing.T) {
	require.Equal(t, "segun pliego", NormalizeCondition("Según Pliego"))
	require.Equal(t, "segun pliego", NormalizeCondition("  SEGUN   PLIEGO  "))
	require.Equal(t, "refinanciacion", NormalizeCondition("Refinanciación"))
}

func TestNormalizeConditionEmpty(t *testing.T) {
	require.Equal(t, "", NormalizeCondition(""))
	require.Equal(t, "", NormalizeCondition("   "))
}
