package mockapi

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Response bodies follow Django REST framework so the client sees what the real backend sends.
const (
	msgNotAuthenticated = "Authentication credentials were not provided."
	msgTokenNotValid    = "Given token not valid for any token type"
	msgRefreshInvalid   = "Token is invalid or expired"
	msgBlacklisted      = "Token is blacklisted"
	msgBadCredentials   = "No active account found with the given credentials"
	msgForbidden        = "You do not have permission to perform this action."
	msgNotFound         = "Not found."
	msgInvalidPage      = "Invalid page."
	msgFieldRequired    = "This field is required."
	codeTokenNotValid   = "token_not_valid"
)

func abortDetail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

func abortTokenNotValid(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": msg, "code": codeTokenNotValid})
}

func abortThrottled(c *gin.Context, wait int) {
	c.Header("Retry-After", strconv.Itoa(wait))
	abortDetail(c, http.StatusTooManyRequests, fmt.Sprintf("Request was throttled. Expected available in %d seconds.", wait))
}

// abortBind turns a binding failure into DRF's field-keyed error lists.
func abortBind(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := gin.H{}
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = []string{fieldMessage(fe)}
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, fields)
		return
	}
	abortDetail(c, http.StatusBadRequest, "JSON parse error - "+err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgFieldRequired
	case "email":
		return "Enter a valid email address."
	}
	return "Invalid value."
}

// page is a DRF PageNumberPagination envelope.
type page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// paginate slices items for the ?page= parameter. ok is false for an out-of-range page.
func paginate[T any](c *gin.Context, items []T, size int) (page[T], bool) {
	n := 1
	if raw := c.Query("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return page[T]{}, false
		}
		n = v
	}
	last := int(math.Max(1, math.Ceil(float64(len(items))/float64(size))))
	if n > last {
		return page[T]{}, false
	}

	start := (n - 1) * size
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	out := page[T]{Count: len(items), Results: items[start:end]}
	if n < last {
		out.Next = pageURL(c, n+1)
	}
	if n > 1 {
		out.Previous = pageURL(c, n-1)
	}
	return out, true
}

func pageURL(c *gin.Context, n int) *string {
	u := url.URL{Scheme: "http", Host: c.Request.Host, Path: c.Request.URL.Path}
	q := c.Request.URL.Query()
	q.Set("page", strconv.Itoa(n))
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}

// queryInt parses an optional integer filter.
func queryInt(c *gin.Context, key string) (*int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	return &v, true
}
