package labelpress

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/labelpress/content"
)

// labelSeparator joins label texts in the publish form, e.g. "go_sql_web".
const labelSeparator = "_"

// SplitLabels splits a joined label list and drops blank entries.
func SplitLabels(joined string) []string {
	return FilterEmpty(strings.Split(joined, labelSeparator))
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// bind fills dst from the query string and then from the body, which may be
// JSON or a form.
func bind(c echo.Context, dst any) error {
	b := &echo.DefaultBinder{}
	if err := b.BindQueryParams(c, dst); err != nil {
		return content.InvalidArgumentf("malformed query").WithCause(err)
	}
	if err := b.BindBody(c, dst); err != nil {
		return content.InvalidArgumentf("malformed body").WithCause(err)
	}
	return nil
}

func isJSON(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

// optionalString returns the named form or query value, or nil when the
// field is absent. JSON requests carry optional fields as pointers already.
func optionalString(c echo.Context, name string) (*string, error) {
	if isJSON(c) {
		return nil, nil
	}
	form, err := c.FormParams()
	if err != nil {
		return nil, content.InvalidArgumentf("malformed form").WithCause(err)
	}
	if !form.Has(name) {
		return nil, nil
	}
	v := form.Get(name)
	return &v, nil
}

func optionalBool(c echo.Context, name string) (*bool, error) {
	s, err := optionalString(c, name)
	if err != nil || s == nil {
		return nil, err
	}
	b, err := strconv.ParseBool(*s)
	if err != nil {
		return nil, content.InvalidArgumentf("%s must be true or false, got %q", name, *s)
	}
	return &b, nil
}

func requireID(id int64, what string) error {
	if id < 1 {
		return content.InvalidArgumentf("%s id is required", what)
	}
	return nil
}
