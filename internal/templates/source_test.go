package templates_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"billdoc/internal/config"
	"billdoc/internal/domain"
	"billdoc/internal/templates"
	"billdoc/mocks"
)

func validTemplate(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	require.NoError(t, err)
	_, err = w.Write([]byte("application/vnd.oasis.opendocument.text"))
	require.NoError(t, err)
	w, err = zw.Create("content.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<office:text>[총요금]</office:text>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "water_bill.odt", false},
		{"korean", "수도요금.odt", false},
		{"empty", "", true},
		{"extension only", ".odt", true},
		{"wrong extension", "water_bill.docx", true},
		{"no extension", "water_bill", true},
		{"slash", "../water_bill.odt", true},
		{"nested", "a/b.odt", true},
		{"backslash", `a\b.odt`, true},
		{"dotdot", "..odt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := templates.ValidateName(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidTemplateName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileSource_Load(t *testing.T) {
	dir := t.TempDir()
	tpl := validTemplate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "water_bill.odt"), tpl, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.odt"), []byte("not a zip"), 0o600))

	src := templates.NewFileSource(dir)

	data, err := src.Load(context.Background(), "water_bill.odt")
	require.NoError(t, err)
	assert.Equal(t, tpl, data)

	_, err = src.Load(context.Background(), "missing.odt")
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)

	_, err = src.Load(context.Background(), "broken.odt")
	assert.ErrorIs(t, err, domain.ErrTemplateInvalid)

	_, err = src.Load(context.Background(), "../water_bill.odt")
	assert.ErrorIs(t, err, domain.ErrInvalidTemplateName)
}

func TestS3Source_Load(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	tpl := validTemplate(t)
	storage.On("Download", mock.Anything, "tpl-bucket", "templates/water_bill.odt").Return(tpl, nil)
	storage.On("Download", mock.Anything, "tpl-bucket", "templates/missing.odt").
		Return(nil, errors.Join(errors.New("NoSuchKey"), domain.ErrNotFound))
	storage.On("Download", mock.Anything, "tpl-bucket", "templates/down.odt").
		Return(nil, errors.New("connection reset"))

	src := templates.NewS3Source(storage, "tpl-bucket", "templates/")

	data, err := src.Load(context.Background(), "water_bill.odt")
	require.NoError(t, err)
	assert.Equal(t, tpl, data)

	_, err = src.Load(context.Background(), "missing.odt")
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)

	_, err = src.Load(context.Background(), "down.odt")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrTemplateNotFound)

	_, err = src.Load(context.Background(), "a/b.odt")
	assert.ErrorIs(t, err, domain.ErrInvalidTemplateName)
	storage.AssertNumberOfCalls(t, "Download", 3)
}

func TestCachedSource_HitsAndMisses(t *testing.T) {
	next := new(mocks.MockTemplateSource)
	tpl := validTemplate(t)
	next.On("Load", mock.Anything, "water_bill.odt").Return(tpl, nil).Once()
	next.On("Load", mock.Anything, "missing.odt").Return(nil, domain.ErrTemplateNotFound).Twice()

	var hits, misses int
	src := templates.NewCachedSource(next, 4, time.Minute, func() { hits++ }, func() { misses++ })

	for i := 0; i < 3; i++ {
		data, err := src.Load(context.Background(), "water_bill.odt")
		require.NoError(t, err)
		assert.Equal(t, tpl, data)
	}
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, misses)

	// Failures are not cached.
	for i := 0; i < 2; i++ {
		_, err := src.Load(context.Background(), "missing.odt")
		assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	}
	assert.Equal(t, 1, src.Len())
	next.AssertExpectations(t)
}

func TestCachedSource_ExpiresAndPurges(t *testing.T) {
	next := new(mocks.MockTemplateSource)
	tpl := validTemplate(t)
	next.On("Load", mock.Anything, "water_bill.odt").Return(tpl, nil)

	src := templates.NewCachedSource(next, 4, 20*time.Millisecond, nil, nil)

	_, err := src.Load(context.Background(), "water_bill.odt")
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)
	_, err = src.Load(context.Background(), "water_bill.odt")
	require.NoError(t, err)

	src.Purge()
	assert.Equal(t, 0, src.Len())
	_, err = src.Load(context.Background(), "water_bill.odt")
	require.NoError(t, err)

	next.AssertNumberOfCalls(t, "Load", 3)
}

func TestNewSource(t *testing.T) {
	_, err := templates.NewSource(&config.TemplateConfig{Source: config.TemplateSourceFile, Dir: t.TempDir()}, nil, nil, nil)
	assert.NoError(t, err)

	src, err := templates.NewSource(&config.TemplateConfig{Source: config.TemplateSourceFile, Dir: t.TempDir(), CacheSize: 8, CacheTTL: time.Minute}, nil, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &templates.CachedSource{}, src)

	_, err = templates.NewSource(&config.TemplateConfig{Source: config.TemplateSourceS3}, nil, nil, nil)
	assert.Error(t, err)

	_, err = templates.NewSource(&config.TemplateConfig{Source: "ftp"}, nil, nil, nil)
	assert.Error(t, err)
}
