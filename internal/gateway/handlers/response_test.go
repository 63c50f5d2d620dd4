package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syntra-pos/internal/poserr"
)

func TestRespondErrorMapsKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{poserr.Validation("bad"), http.StatusBadRequest, poserr.CodeValidation},
		{poserr.ModifierConstraint("Extras", "too many"), http.StatusBadRequest, poserr.CodeModifierConstraint},
		{poserr.Unauthenticated(), http.StatusUnauthorized, poserr.CodeUnauthenticated},
		{poserr.NotFound("gone"), http.StatusNotFound, poserr.CodeNotFound},
		{poserr.RegisterClosed(), http.StatusConflict, poserr.CodeRegisterClosed},
		{poserr.ConcurrentSettlement(), http.StatusConflict, poserr.CodeConcurrentSettlement},
		{poserr.AmountMismatch("1.00", "2.00"), http.StatusUnprocessableEntity, poserr.CodeAmountMismatch},
		{poserr.InsufficientStock("Burger"), http.StatusUnprocessableEntity, poserr.CodeInsufficientStock},
		{errors.Wrap(poserr.NotFound("gone"), "wrapped"), http.StatusNotFound, poserr.CodeNotFound},
		{poserr.Internal(errors.New("db down"), "failed"), http.StatusInternalServerError, poserr.CodeInternal},
		{errors.New("boom"), http.StatusInternalServerError, poserr.CodeInternal},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		respondError(c, tc.err)

		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		var resp APIResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, tc.code, resp.Error)
		if tc.status == http.StatusInternalServerError {
			assert.Equal(t, "Internal server error", resp.Message)
		}
	}
}

func TestCreateOrderRequestToCart(t *testing.T) {
	qty := int32(2)
	session := "6f1c2a1e-4c55-4d8e-9a0a-0c3d1f5e2b7a"
	req := CreateOrderRequest{
		OrderType:      " table ",
		TableSessionID: &session,
		DiscountType:   "percent",
		Items: []OrderItemRequest{{
			ItemType:        "product",
			ItemID:          "0b4a8f3e-2d7c-4f1a-8e6b-9c5d3a2f1e0d",
			ClientReference: "a",
			Quantity:        1,
			Modifiers: []OrderModifierRequest{
				{ModifierID: "1c2d3e4f-5a6b-4c7d-8e9f-0a1b2c3d4e5f"},
				{ModifierID: "2c2d3e4f-5a6b-4c7d-8e9f-0a1b2c3d4e5f", Quantity: &qty},
			},
		}},
	}

	cart, err := req.toCart()
	require.NoError(t, err)
	assert.Equal(t, "TABLE", string(cart.OrderType))
	assert.Equal(t, "PERCENT", string(cart.DiscountType))
	require.NotNil(t, cart.TableSessionID)
	assert.Equal(t, session, cart.TableSessionID.String())
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "PRODUCT", string(cart.Items[0].ItemType))
	require.Len(t, cart.Items[0].Modifiers, 2)
	assert.Equal(t, int32(1), cart.Items[0].Modifiers[0].Quantity)
	assert.Equal(t, int32(2), cart.Items[0].Modifiers[1].Quantity)

	req.Items[0].Modifiers[0].ModifierID = "nope"
	_, err = req.toCart()
	assert.Error(t, err)
}
