package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateImage(t *testing.T) {
	require.NoError(t, ValidateImage(1024, "image/jpeg"))
	require.NoError(t, ValidateImage(1024, "image/png"))
	require.NoError(t, ValidateImage(maxImageSize, "image/jpeg"))

	require.ErrorIs(t, ValidateImage(maxImageSize+1, "image/jpeg"), ErrFileTooBig)
	require.ErrorIs(t, ValidateImage(1024, "image/gif"), ErrInvalidFileType)
	require.ErrorIs(t, ValidateImage(1024, "application/pdf"), ErrInvalidFileType)
	require.ErrorIs(t, ValidateImage(1024, ""), ErrInvalidFileType)
}
