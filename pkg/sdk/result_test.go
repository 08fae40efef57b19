package sdk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_Err(t *testing.T) {
	tests := []struct {
		name     string
		res      *Result
		wantErr  bool
		notFound bool
		msg      string
	}{
		{name: "success", res: &Result{Success: true, Result: []string{"ok"}, Code: 200}},
		{name: "not found", res: &Result{Result: []string{"player not found"}, Code: 404},
			wantErr: true, notFound: true, msg: "[ScriptSDK] player not found"},
		{name: "generic", res: &Result{Result: []string{"invalid body"}, Code: 400},
			wantErr: true, msg: "[ScriptSDK] invalid body"},
		{name: "no code", res: &Result{Result: []string{"boom"}},
			wantErr: true, msg: "[ScriptSDK] boom"},
		{name: "empty result", res: &Result{Code: 500}, wantErr: true, msg: "[ScriptSDK] "},
		{name: "nil", res: nil, wantErr: true, msg: "[ScriptSDK] empty response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.res.Err()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.msg, err.Error())
			assert.Equal(t, tt.notFound, IsNotFound(err))
			if !tt.notFound {
				var e *Error
				assert.True(t, errors.As(err, &e))
			}
		})
	}
}

func TestCall(t *testing.T) {
	transportErr := errors.New("connection reset")
	s := SenderFunc(func(ctx context.Context, command string, args []string, opts ...SendOption) (*Result, error) {
		switch command {
		case "broken":
			return nil, transportErr
		case "missing":
			return &Result{Result: []string{"gone"}, Code: 404}, nil
		}
		return &Result{Success: true, Result: args}, nil
	})

	res, err := Call(context.Background(), s, "echo", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res.Result)

	_, err = Call(context.Background(), s, "missing", nil)
	assert.True(t, IsNotFound(err))

	_, err = Call(context.Background(), s, "broken", nil)
	require.ErrorIs(t, err, transportErr)
	assert.False(t, IsNotFound(err))
}

func TestResolveOptions(t *testing.T) {
	assert.Equal(t, DefaultTimeout, ResolveOptions().Timeout)
	assert.Equal(t, DefaultTimeout, ResolveOptions(WithTimeout(0)).Timeout)
	assert.Equal(t, 9*time.Second, ResolveOptions(WithTimeout(9*time.Second)).Timeout)
}

func TestBody(t *testing.T) {
	body := EncodeBody([]string{"Steve", "Title", "a;#;b"})
	assert.Equal(t, "Steve;#;Title;#;a;#;b", body)

	fields, ok := DecodeBody(body, 3)
	require.True(t, ok)
	assert.Equal(t, []string{"Steve", "Title", "a;#;b"}, fields)

	_, ok = DecodeBody("Steve", 2)
	assert.False(t, ok)

	fields, ok = DecodeBody("Steve", 1)
	require.True(t, ok)
	assert.Equal(t, []string{"Steve"}, fields)

	_, ok = DecodeBody("x", 0)
	assert.False(t, ok)
}
