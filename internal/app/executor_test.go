package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordStage(name string, fail error, seen *[]string) Stage[*int] {
	return Stage[*int]{Name: name, Run: func(_ context.Context, n *int) error {
		*seen = append(*seen, name)
		*n++

		return fail
	}}
}

func TestRunStages_InOrder(t *testing.T) {
	var (
		seen  []string
		count int
	)

	err := RunStages(context.Background(), discardLogger(), "count", &count,
		recordStage(StageValidate, nil, &seen),
		recordStage(StageWrite, nil, &seen),
		recordStage(StageVerify, nil, &seen),
		recordStage(StagePublish, nil, &seen),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{StageValidate, StageWrite, StageVerify, StagePublish}, seen)
	assert.Equal(t, 4, count)
}

func TestRunStages_StopsAtFailure(t *testing.T) {
	cause := errors.New("boom")
	names := []string{StageValidate, StageWrite, StageVerify, StagePublish}

	for at, name := range names {
		t.Run(name, func(t *testing.T) {
			var (
				seen  []string
				count int
			)

			stages := make([]Stage[*int], len(names))
			for i, n := range names {
				var fail error
				if i == at {
					fail = cause
				}

				stages[i] = recordStage(n, fail, &seen)
			}

			err := RunStages(context.Background(), nil, "count", &count, stages...)
			require.Error(t, err)

			assert.ErrorIs(t, err, cause)
			assert.Contains(t, err.Error(), "count: "+name+": boom")
			assert.Equal(t, names[:at+1], seen)

			stage, ok := FailedStage(err)
			require.True(t, ok)
			assert.Equal(t, name, stage)
		})
	}
}

func TestFailedStage_PlainError(t *testing.T) {
	_, ok := FailedStage(errors.New("plain"))
	assert.False(t, ok)
}
