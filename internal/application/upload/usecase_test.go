package upload_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dresssync-api/internal/application/upload"
	"github.com/jhoicas/dresssync-api/internal/domain"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/storage"
)

func newUseCase(t *testing.T) *upload.UploadUseCase {
	t.Helper()
	s, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)
	return upload.NewUploadUseCase(s, 1)
}

func TestUpload_GuardaConNombreUUID(t *testing.T) {
	uc := newUseCase(t)
	resp, err := uc.Upload(context.Background(), "Foto.PNG", 4, bytes.NewBufferString("data"))
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(resp.Filename))
	assert.Len(t, strings.TrimSuffix(resp.Filename, ".png"), 36)
	assert.Equal(t, "/uploads/"+resp.Filename, resp.URL)
	assert.EqualValues(t, 4, resp.Size)
}

func TestUpload_Rechazos(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	_, err := uc.Upload(ctx, "script.exe", 10, bytes.NewBufferString("x"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Upload(ctx, "grande.jpg", uc.MaxBytes()+1, bytes.NewBufferString("x"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Upload(ctx, "vacio.pdf", 0, bytes.NewBufferString(""))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
