package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type sampleItem struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type sampleData struct {
	Message    string       `json:"message"`
	SampleData []sampleItem `json:"sample_data"`
}

type sampleResponse struct {
	Success bool       `json:"success"`
	Data    sampleData `json:"data"`
}

var samplePayload = sampleResponse{
	Success: true,
	Data: sampleData{
		Message: "This is a sample SSP data response",
		SampleData: []sampleItem{
			{ID: 1, Name: "Item 1", Value: 100},
			{ID: 2, Name: "Item 2", Value: 200},
			{ID: 3, Name: "Item 3", Value: 300},
		},
	},
}

// SampleData returns the fixed sample payload
func SampleData(c echo.Context) error {
	return c.JSON(http.StatusOK, samplePayload)
}
