package handlers

import (
	"net/http"

	"github.com/TwigBush/sift-go/internal/httpx"
	"github.com/TwigBush/sift-go/internal/version"
)

func VersionHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, version.Get())
}
