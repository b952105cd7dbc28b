package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestGetProduct(t *testing.T) {
	e := newEnv()
	rec := e.do(http.MethodGet, "/Products/7", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(7), body["id"])
	assert.Equal(t, "2024-03-01", body["issueDate"])
	assert.Equal(t, int64(7), e.products.get.Id)
}

func TestGetProduct_BadID(t *testing.T) {
	e := newEnv()
	for _, path := range []string{"/Products/abc", "/Products/0", "/Products/-3"} {
		rec := e.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
	assert.Nil(t, e.products.get)
}

func TestGetProduct_NotFound(t *testing.T) {
	e := newEnv()
	e.products.err = status.Error(codes.NotFound, "Product not found.")

	rec := e.do(http.MethodGet, "/Products/7", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found.", decode(t, rec)["message"])
}

func TestListProducts(t *testing.T) {
	e := newEnv()
	rec := e.do(http.MethodGet, "/Products?limit=10&offset=20", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
	assert.Equal(t, int32(10), e.products.list.Limit)
	assert.Equal(t, int32(20), e.products.list.Offset)

	rec = e.do(http.MethodGet, "/Products?limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProduct(t *testing.T) {
	e := newEnv()
	rec := e.do(http.MethodPost, "/Products",
		`{"name":"Lamp","amount":3,"supplier":"Acme","details":"desk","price":19.5,"issueDate":"2024-03-01"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(9), body["id"])
	assert.Equal(t, "Product created successfully.", body["message"])
	assert.Equal(t, "Acme", e.products.create.Supplier)
}

func TestCreateProduct_Invalid(t *testing.T) {
	tests := map[string]string{
		"no name":        `{"amount":1,"price":1,"issueDate":"2024-03-01"}`,
		"negative price": `{"name":"x","price":-1,"issueDate":"2024-03-01"}`,
		"negative stock": `{"name":"x","amount":-1,"issueDate":"2024-03-01"}`,
		"bad date":       `{"name":"x","issueDate":"01/03/2024"}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			e := newEnv()
			rec := e.do(http.MethodPost, "/Products", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, e.products.create)
		})
	}
}

func TestUpdateProduct_PartialFields(t *testing.T) {
	e := newEnv()
	rec := e.do(http.MethodPut, "/Products/7", `{"price":25}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), e.products.update.Id)
	require.NotNil(t, e.products.update.Price)
	assert.Equal(t, 25.0, *e.products.update.Price)
	assert.Nil(t, e.products.update.Name)
	assert.Nil(t, e.products.update.IssueDate)
}

func TestUpdateProduct_EmptyNameRejected(t *testing.T) {
	e := newEnv()
	rec := e.do(http.MethodPut, "/Products/7", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, e.products.update)
}

func TestDeleteProduct(t *testing.T) {
	e := newEnv()
	rec := e.do(http.MethodDelete, "/Products/7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product deleted successfully.", decode(t, rec)["message"])

	e.products.err = status.Error(codes.NotFound, "Product not found.")
	rec = e.do(http.MethodDelete, "/Products/7", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
