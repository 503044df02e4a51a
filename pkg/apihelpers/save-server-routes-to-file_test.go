package apihelpers

import (
	"bytes"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestWriteRoutes(t *testing.T) {
	routes := gin.RoutesInfo{
		{Method: "POST", Path: "/reports"},
		{Method: "GET", Path: "/reports/:id"},
		{Method: "GET", Path: "/reports"},
	}

	var buf bytes.Buffer
	if err := writeRoutes(&buf, routes); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "GET\t/reports\nPOST\t/reports\nGET\t/reports/:id\n"
	if buf.String() != want {
		t.Errorf("writeRoutes() = %q, want %q", buf.String(), want)
	}
}
