package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/ZaguanLabs/calinga"
)

// Error codes returned in ErrorResponse.
const (
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeNoFallback     = "no_fallback"
	ErrCodeCache          = "cache_error"
	ErrCodeInternal       = "internal_error"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// LanguageInfo describes one project language.
type LanguageInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Direction   string `json:"direction"`
	IsReference bool   `json:"isReference"`
}

// LanguagesResponse is the body of GET /languages.
type LanguagesResponse struct {
	Languages []LanguageInfo `json:"languages"`
	Reference string         `json:"reference,omitempty"`
}

type handler struct {
	reader Reader
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": calinga.Version})
}

func (h *handler) languages(c *gin.Context) {
	dir := h.reader.LanguageDirectory()
	if dir == nil {
		abortWithError(c, http.StatusNotFound, ErrCodeNotFound, "language directory not configured")
		return
	}

	reference := dir.Reference()
	names := dir.Languages()
	out := LanguagesResponse{
		Languages: make([]LanguageInfo, 0, len(names)),
		Reference: reference,
	}
	for _, name := range names {
		out.Languages = append(out.Languages, LanguageInfo{
			Name:        name,
			DisplayName: calinga.DisplayName(name),
			Direction:   calinga.GetDirection(name),
			IsReference: name == reference,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) translations(c *gin.Context) {
	lang := c.Param("language")
	namespace := c.Param("namespace")

	if lang != calinga.DevLanguage {
		if _, err := language.Parse(calinga.ToHTMLLang(lang)); err != nil {
			abortWithError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid language tag "+lang)
			return
		}
	}

	translations, err := h.reader.Read(c.Request.Context(), lang, namespace)
	if err != nil {
		status, code := classify(err)
		abortWithError(c, status, code, err.Error())
		return
	}

	c.Header("Content-Language", calinga.ToHTMLLang(lang))
	c.JSON(http.StatusOK, translations)
}

// classify maps a Read error to an HTTP status and error code.
func classify(err error) (int, string) {
	var malformed *calinga.MalformedCacheEntryError
	var cacheErr *calinga.CacheError

	switch {
	case errors.Is(err, calinga.ErrNoFallback):
		return http.StatusServiceUnavailable, ErrCodeNoFallback
	case errors.As(err, &malformed), errors.As(err, &cacheErr):
		return http.StatusInternalServerError, ErrCodeCache
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: GetRequestID(c),
	})
}
