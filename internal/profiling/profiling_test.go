package profiling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatMs(t *testing.T) {
	assert.Equal(t, "4.2ms", FormatMs(4200*time.Microsecond))
	assert.Equal(t, "3ms", FormatMs(3*time.Millisecond))
	assert.Equal(t, "0ms", FormatMs(0))
}

func TestTrackAndReset(t *testing.T) {
	ResetFrame()
	Track("scene.Update")()
	Track("scene.Render")()
	Track("scene.Render")()

	assert.Equal(t, 2, Count("scene.Render"))
	assert.Len(t, Snapshot(), 2)
	assert.GreaterOrEqual(t, SumWithPrefix("scene."), time.Duration(0))

	ResetFrame()
	assert.Empty(t, Snapshot())
	assert.Equal(t, 0, Count("scene.Render"))
	assert.Equal(t, "", TopN(3))
}
