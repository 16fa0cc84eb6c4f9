//go:build linux

package managed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExceptionClientData(t *testing.T) {
	got := ExceptionClientData("/dumps/", 42, []string{"System.Exception", "System.InvalidOperationException"})
	assert.Equal(t, "exception;/dumps/;42;System.Exception:1;System.InvalidOperationException:1", got)
}

func TestExceptionClientData_NoFilters(t *testing.T) {
	got := ExceptionClientData("/dumps/", 42, nil)
	assert.Equal(t, "exception;/dumps/;42", got)
}

func TestGCHeapSizeClientData(t *testing.T) {
	got := GCHeapSizeClientData("/dumps/", 7, 2, []int{100, 200})
	assert.Equal(t, "gcheapsize;/dumps/;7;2;100;200", got)
}

func TestGCGenerationClientData(t *testing.T) {
	got := GCGenerationClientData("/dumps/", 7, 2)
	assert.Equal(t, "gcgeneration;/dumps/;7;2", got)
}
