package models

type GenerateTransactionsRequest struct {
	Count        int    `json:"count" validate:"required,min=1"`
	DeliveryMode string `json:"deliveryMode"`
	Topic        string `json:"topic"`
}

type GenerateTransactionsResult struct {
	GenerationID string `json:"generationId"`
	Requested    int    `json:"requested"`
	Sent         int    `json:"sent"`
	Failed       int    `json:"failed"`
	DeliveryMode string `json:"deliveryMode"`
	Topic        string `json:"topic"`
}

type GenerateTransactionsResponse struct {
	Kind string `json:"kind"`
	GenerateTransactionsResult
}
