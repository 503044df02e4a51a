package apihelpers

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/gin-gonic/gin"
)

// WriteRoutesToFile dumps the registered routes, sorted by path and method, for debugging.
// Failures are logged and never stop the server.
func WriteRoutesToFile(router *gin.Engine, filename string) {
	file, err := os.Create(filename)
	if err != nil {
		slog.Error("could not create routes file", slog.String("file", filename), slog.String("error", err.Error()))
		return
	}
	defer file.Close()

	if err := writeRoutes(file, router.Routes()); err != nil {
		slog.Error("could not write routes file", slog.String("file", filename), slog.String("error", err.Error()))
	}
}

func writeRoutes(w io.Writer, routes gin.RoutesInfo) error {
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})

	for _, route := range routes {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", route.Method, route.Path); err != nil {
			return err
		}
	}
	return nil
}
