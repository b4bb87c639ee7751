package display

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDots(t *testing.T) {
	assert.Contains(t, Dots(2, 6), "●●○○○○")
	assert.True(t, strings.HasSuffix(Dots(9, 6), " 6/6"))
	assert.True(t, strings.HasSuffix(Dots(-1, 6), " 0/6"))
}

func TestSigned(t *testing.T) {
	assert.Equal(t, "+2", Signed(2))
	assert.Equal(t, "+0", Signed(0))
	assert.Equal(t, "-1", Signed(-1))
}
