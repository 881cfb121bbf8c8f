package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperapi/internal/config"
)

func TestNewMinIO_Validation(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.MinIOConfig
		wantMissing []string
	}{
		{
			name:        "nothing configured",
			cfg:         config.MinIOConfig{},
			wantMissing: []string{"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET"},
		},
		{
			name:        "missing credentials",
			cfg:         config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "papers"},
			wantMissing: []string{"MINIO_ACCESS_KEY", "MINIO_SECRET_KEY"},
		},
		{
			name:        "missing bucket",
			cfg:         config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"},
			wantMissing: []string{"MINIO_BUCKET"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewMinIO(tt.cfg)
			assert.Nil(t, s)
			require.Error(t, err)
			for _, env := range tt.wantMissing {
				assert.Contains(t, err.Error(), env+" is required")
			}
		})
	}
}

func TestExportKey(t *testing.T) {
	assert.Equal(t, "papers/7/abc.json", ExportKey(7, "abc"))
}

func TestExportMetadata(t *testing.T) {
	md := exportMetadata(PaperExport{PaperID: 12, Title: "Übung 1/2", Level: "intro"})

	assert.Equal(t, "12", md["paper-id"])
	assert.Equal(t, "%C3%9Cbung+1%2F2", md["paper-title"])
	assert.Equal(t, "intro", md["paper-level"])
}

func TestDownloadName(t *testing.T) {
	tests := map[string]string{
		"Midterm":            "midterm.json",
		"Grade 3 / Week 12!": "grade-3-week-12.json",
		"  --  ":             "paper.json",
		"":                   "paper.json",
		"Übung":              "bung.json",
	}
	for title, want := range tests {
		assert.Equal(t, want, downloadName(title), "title %q", title)
	}
}
