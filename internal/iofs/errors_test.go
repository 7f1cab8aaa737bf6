package iofs

import (
	"errors"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gnviews/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	originalErr := errors.New("root cause")

	tests := []struct {
		name string
		err  error
		code gn.ErrorCode
		path string
		text string
	}{
		{
			name: "CreateDirError",
			err:  CreateDirError("/dir", originalErr),
			code: errcode.CreateDirError,
			path: "/dir",
			text: "cannot create directory",
		},
		{
			name: "CopyFileError",
			err:  CopyFileError("/file", originalErr),
			code: errcode.CopyFileError,
			path: "/file",
			text: "cannot copy",
		},
		{
			name: "CreateFileError",
			err:  CreateFileError("/dump.sql", originalErr),
			code: errcode.CreateFileError,
			path: "/dump.sql",
			text: "cannot create file /dump.sql",
		},
		{
			name: "ReadFileError",
			err:  ReadFileError("/path", originalErr),
			code: errcode.ReadFileError,
			path: "/path",
			text: "cannot read /path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gnErr, ok := tt.err.(*gn.Error)
			require.True(t, ok, "Error should be of type *gn.Error")

			assert.Equal(t, tt.code, gnErr.Code)
			assert.Contains(t, gnErr.Msg, "%s")
			require.Len(t, gnErr.Vars, 1)
			assert.Equal(t, tt.path, gnErr.Vars[0])
			assert.Contains(t, gnErr.Err.Error(), tt.text)
			assert.ErrorIs(t, gnErr.Err, originalErr)
		})
	}
}

// TestErrorFunctions_CallerInfo verifies caller info is captured.
func TestErrorFunctions_CallerInfo(t *testing.T) {
	err := ReadFileError("/data", errors.New("test"))
	gnErr := err.(*gn.Error)
	assert.Contains(t, gnErr.Err.Error(), "from")
	assert.Contains(t, gnErr.Err.Error(), "TestErrorFunctions_CallerInfo")
}
