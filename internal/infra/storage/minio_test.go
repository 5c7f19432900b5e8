package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "text/plain; charset=utf-8", ContentTypeFor("p1/reports/a.txt"))
	assert.Equal(t, "application/pdf", ContentTypeFor("p1/exports/a.pdf"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("p1/blob"))
}

func TestObjectURL(t *testing.T) {
	assert.Equal(t, "http://minio:9000/reports/p1/a.txt", ObjectURL("", "minio:9000", "reports", "p1/a.txt"))
	assert.Equal(t, "https://s3.local/b/k", ObjectURL("https", "s3.local", "b", "k"))
}
