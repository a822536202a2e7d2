package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock_Location(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("tzdata not available")
	}

	assert.Equal(t, tokyo, RealClock{Loc: tokyo}.Now().Location())
	assert.Equal(t, time.Local, RealClock{}.Now().Location())
}
