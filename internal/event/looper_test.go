package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLooperDispatchOrder(t *testing.T) {
	looper := NewLooper(8)

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		looper.Post(func() { got = append(got, i) })
	}

	assert.Equal(t, 5, looper.DispatchAll())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestLooperDispatchAllRunsNestedPosts(t *testing.T) {
	looper := NewLooper(0)

	var got []string
	looper.Post(func() {
		got = append(got, "outer")
		looper.Post(func() { got = append(got, "inner") })
	})

	assert.Equal(t, 2, looper.DispatchAll())
	assert.Equal(t, []string{"outer", "inner"}, got)
}

func TestLooperDispatchAllEmpty(t *testing.T) {
	looper := NewLooper(0)
	assert.Equal(t, 0, looper.DispatchAll())
	looper.Post(nil)
	assert.Equal(t, 0, looper.DispatchAll())
}
