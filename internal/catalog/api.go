package catalog

import "restaurant-floor-backend/internal/store"

// apiResponse models the top-level structure of the catalog service's response.
type apiResponse struct {
	Code int `json:"code"`
	Data struct {
		Page     int                 `json:"page"`
		PageSize int                 `json:"pageSize"`
		Total    int                 `json:"total"`
		Items    []store.CatalogItem `json:"items"`
	} `json:"data"`
}
