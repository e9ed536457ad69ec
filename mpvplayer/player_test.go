package mpvplayer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueCommandsStartMidQueue(t *testing.T) {
	cmds := queueCommands([]string{"a", "b", "c"}, 2)

	assert.Equal(t, [][]string{
		{"stop"},
		{"loadfile", "a", "append"},
		{"loadfile", "b", "append"},
		{"loadfile", "c", "append"},
		{"playlist-play-index", "2"},
	}, cmds)
	for _, cmd := range cmds {
		assert.NotContains(t, cmd, "replace", "no entry starts playing before the chosen one")
	}
}

func TestQueueCommandsStartOutOfRange(t *testing.T) {
	cmds := queueCommands([]string{"a", "b"}, 5)
	assert.Equal(t, []string{"playlist-play-index", "0"}, cmds[len(cmds)-1])

	cmds = queueCommands([]string{"a"}, -1)
	assert.Equal(t, []string{"playlist-play-index", "0"}, cmds[len(cmds)-1])
}

func TestQueueCommandsEmpty(t *testing.T) {
	assert.Equal(t, [][]string{{"stop"}}, queueCommands(nil, 0))
}
