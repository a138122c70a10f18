package servicelog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirosfoundation/go-emandates/internal/config"
)

var testTime = time.Date(2024, 3, 5, 9, 20, 30, 123000000, time.UTC)

func fixedClock() time.Time { return testTime }

func TestExpand(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{config.DefaultServiceLogPattern, `2024-03-05\092030.123-AcquirerTrxReq.xml`},
		{"%Y/%M/%D/%a.xml", "2024/03/05/AcquirerTrxReq.xml"},
		{"%h-%m-%s-%f", "09-20-30-123"},
		{"100%", "100%"},
		{"%x%a", "%xAcquirerTrxReq"},
		{"plain.xml", "plain.xml"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, Expand(tt.pattern, testTime, "AcquirerTrxReq"))
		})
	}
}

func TestExpand_Padding(t *testing.T) {
	early := time.Date(987, 1, 2, 3, 4, 5, 6000000, time.UTC)
	assert.Equal(t, "0987-01-02 03:04:05.006", Expand("%Y-%M-%D %h:%m:%s.%f", early, ""))
}

func TestRelativePath(t *testing.T) {
	path, err := RelativePath(`2024-03-05\092030.123-DirectoryReq.xml`)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("2024-03-05", "092030.123-DirectoryReq.xml"), path)

	for _, bad := range []string{"", "/etc/passwd", `..\secret.xml`, "a/../../b"} {
		_, err := RelativePath(bad)
		assert.Error(t, err, bad)
	}
}

func TestAction(t *testing.T) {
	assert.Equal(t, "DirectoryReq", Action([]byte(`<?xml version="1.0"?><DirectoryReq xmlns="http://www.betaalvereniging.nl/iDx/messages/Merchant-Acquirer/1.0.0"/>`)))
	assert.Equal(t, "unknown", Action([]byte("not xml")))
	assert.Equal(t, "unknown", Action(nil))
}

func TestDirWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	w, err := NewDirWriter(dir, "", WithClock(fixedClock))
	require.NoError(t, err)

	data := []byte(`<AcquirerStatusRes version="1.0.0"/>`)
	require.NoError(t, w.Write(context.Background(), data))
	require.NoError(t, w.Close(context.Background()))

	got, err := os.ReadFile(filepath.Join(dir, "2024-03-05", "092030.123-AcquirerStatusRes.xml"))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestDirWriter_Errors(t *testing.T) {
	_, err := NewDirWriter("", "")
	assert.Error(t, err)

	w, err := NewDirWriter(t.TempDir(), "../%a.xml", WithClock(fixedClock))
	require.NoError(t, err)
	assert.ErrorContains(t, w.Write(context.Background(), []byte("<DirectoryReq/>")), "escapes")
}

func TestNew(t *testing.T) {
	w, err := New(context.Background(), &config.ServiceLogsConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, w)

	dir := t.TempDir()
	w, err = New(context.Background(), &config.ServiceLogsConfig{
		Enabled:  true,
		Location: dir,
		Pattern:  "%a-%f.xml",
	}, WithClock(fixedClock))
	require.NoError(t, err)
	require.IsType(t, &DirWriter{}, w)

	require.NoError(t, w.Write(context.Background(), []byte("<DirectoryRes/>")))
	_, err = os.Stat(filepath.Join(dir, "DirectoryRes-123.xml"))
	assert.NoError(t, err)
}

func TestNewGridFSWriter_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewGridFSWriter(ctx, &GridFSConfig{URI: "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200&connectTimeoutMS=200"})
	assert.Error(t, err)
}
