package request

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// RouteStringParam returns an URL route parameter as string.
func RouteStringParam(r *http.Request, param string) string {
	vars := mux.Vars(r)
	return vars[param]
}

// QueryStringParam returns a query string parameter as string.
func QueryStringParam(r *http.Request, param, defaultValue string) string {
	value := r.URL.Query().Get(param)
	if value == "" {
		value = defaultValue
	}
	return value
}

// QueryIntParam returns a query string parameter as int.
func QueryIntParam(r *http.Request, param string, defaultValue int) int {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue
	}

	val, err := strconv.Atoi(value)
	if err != nil || val < 0 {
		return defaultValue
	}

	return val
}

// QueryBoolParam returns a query string parameter as *bool, nil when the
// parameter is absent.
func QueryBoolParam(r *http.Request, param string) *bool {
	value := r.URL.Query().Get(param)
	if value == "" {
		return nil
	}

	val, err := strconv.ParseBool(value)
	if err != nil {
		return nil
	}
	return &val
}
