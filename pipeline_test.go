package collide

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTask(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		size    int
	}{
		{"single worker", 1, 10},
		{"more workers than data", 8, 3},
		{"uneven chunks", 3, 10},
		{"empty data", 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]int, tt.size)
			for i := range data {
				data[i] = i
			}
			visited := make([]int32, tt.size)

			task(tt.workers, data, func(i int) {
				atomic.AddInt32(&visited[i], 1)
			})

			for i, count := range visited {
				assert.Equal(t, int32(1), count, "element %d", i)
			}
		})
	}
}
