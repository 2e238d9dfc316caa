package sl_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/subscription-admin/internal/lib/sl"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	err := errors.New("something went wrong")
	attr := sl.Err(err)

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("something went wrong"), attr.Value)
}

func TestErr_NilError(t *testing.T) {
	assert.NotPanics(t, func() {
		attr := sl.Err(nil)
		assert.Equal(t, "<nil>", attr.Value.String())
	})
}

func TestOp(t *testing.T) {
	attr := sl.Op("transport.Do")
	assert.Equal(t, "op", attr.Key)
	assert.Equal(t, "transport.Do", attr.Value.String())
}

func TestEndpoint(t *testing.T) {
	attr := sl.Endpoint("GET", "/users/all-users")
	assert.Equal(t, "endpoint", attr.Key)
	group := attr.Value.Group()
	assert.Len(t, group, 2)
	assert.Equal(t, "GET", group[0].Value.String())
	assert.Equal(t, "/users/all-users", group[1].Value.String())
}
