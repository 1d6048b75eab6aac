package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failing struct{ calls int }

func (f *failing) Publish(context.Context, string, any) error {
	f.calls++
	return errors.New("down")
}

func TestMarshalEnvelope(t *testing.T) {
	b, err := Marshal(ResourceCreated, map[string]int64{"id": 3})
	require.NoError(t, err)

	var got struct {
		Subject string           `json:"subject"`
		Data    map[string]int64 `json:"data"`
	}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, ResourceCreated, got.Subject)
	assert.Equal(t, int64(3), got.Data["id"])
}

func TestEmitSwallowsErrors(t *testing.T) {
	f := &failing{}
	Emit(context.Background(), f, WatchlistAdded, nil)
	assert.Equal(t, 1, f.calls)

	Emit(context.Background(), nil, WatchlistAdded, nil)
	assert.NoError(t, Nop{}.Publish(context.Background(), ResourceDeleted, nil))
}
