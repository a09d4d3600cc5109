package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-floor-backend/internal/model"
	"restaurant-floor-backend/internal/store"
)

func TestTipField_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		body    string
		want    string
		wantErr bool
	}{
		{`{"tip":"15%"}`, "15%", false},
		{`{"tip":"40.00"}`, "40.00", false},
		{`{"tip":40}`, "40", false},
		{`{"tip":12.5}`, "12.5", false},
		{`{"tip":null}`, "", false},
		{`{}`, "", false},
		{`{"tip":true}`, "", true},
		{`{"tip":[1]}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var req paymentRequest
			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(req.Tip))
		})
	}
}

func TestSettlePayment_NumericTip(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/tables/1/orders", nil, "srv-1", model.RoleServer)
	require.Equal(t, http.StatusCreated, w.Code)
	orderPath := fmt.Sprintf("/api/orders/%d", decode[model.Order](t, w).ID)

	w = s.do(t, http.MethodPost, orderPath+"/items", gin.H{"items": []gin.H{{"menuItemId": 2, "quantity": 2}}}, "srv-1", model.RoleServer)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, orderPath+"/payment", `{"method":"CARD","tip":-5}`, "srv-1", model.RoleServer)
	assert.Equal(t, http.StatusBadRequest, w.Code, "negative tips are rejected")

	w = s.do(t, http.MethodPost, orderPath+"/payment", `{"method":"CASH","tip":40}`, "srv-1", model.RoleServer)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	payment := decode[store.Settlement](t, w).Payment
	assertMoney(t, "40.00", payment.Tip)
	// 100.00 + 16% tax + 40.00 tip
	assertMoney(t, "156.00", payment.Total)
}
