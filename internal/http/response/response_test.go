package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-admin/internal/transport"
	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/feedback"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "unauthenticated", err: &transport.Error{Kind: transport.KindUnauthenticated, Status: 401}, want: http.StatusUnauthorized},
		{name: "validation", err: transport.NewValidationError("op", "bad"), want: http.StatusUnprocessableEntity},
		{name: "client status passes through", err: &transport.Error{Kind: transport.KindStatus, Status: 404}, want: http.StatusNotFound},
		{name: "server status", err: &transport.Error{Kind: transport.KindStatus, Status: 500}, want: http.StatusBadGateway},
		{name: "network", err: &transport.Error{Kind: transport.KindNetwork}, want: http.StatusBadGateway},
		{name: "decode", err: &transport.Error{Kind: transport.KindDecode, Status: 200}, want: http.StatusBadGateway},
		{name: "foreign", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestFromOutcome(t *testing.T) {
	ok := FromOutcome(feedback.Succeeded("", "Saved"))
	assert.Equal(t, StatusOK, ok.Status)
	assert.Empty(t, ok.Error)
	assert.True(t, ok.CloseModal)

	failed := FromOutcome(feedback.Failed(&transport.Error{Kind: transport.KindStatus, Status: 500}, "Failed to save", nil))
	assert.Equal(t, StatusError, failed.Status)
	assert.Equal(t, "Failed to save", failed.Error)

	lost := FromOutcome(feedback.Outcome{Redirect: feedback.LoginPath, Err: transport.ErrUnauthenticated})
	assert.Equal(t, StatusError, lost.Status)
	assert.Equal(t, feedback.LoginPath, lost.Redirect)
	assert.Equal(t, "unauthenticated", lost.Error)
}

func TestValidationError(t *testing.T) {
	type form struct {
		Email string `validate:"required,email"`
	}
	err := validator.New().Struct(form{})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	resp := ValidationError(verrs)
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "Email")
}

func TestPage(t *testing.T) {
	rec := httptest.NewRecorder()
	Page(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil,
		&transport.Error{Kind: transport.KindStatus, Status: 400, Message: "Bad filter"}, "Failed")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":"Error","error":"Bad filter"}`, rec.Body.String())
}
