package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"seatkeep/internal/checkins"
	"seatkeep/internal/shared/apperrors"
	"seatkeep/internal/shared/utils/response"

	"github.com/aws/aws-lambda-go/events"
)

// Handler serves door scanners through API Gateway
type Handler struct {
	service checkins.Service
}

func NewHandler(service checkins.Service) *Handler {
	return &Handler{service: service}
}

// Handle routes POST /events/{eventId}/checkins/scan
func (h *Handler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	eventID, ok := scanEventID(request)
	if !ok || request.HTTPMethod != http.MethodPost {
		return respond(http.StatusNotFound, "Not Found", nil, response.ErrorDetail{Code: apperrors.CodeNotFound}), nil
	}

	var req checkins.ScanRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil || strings.TrimSpace(req.Token) == "" {
		return respond(http.StatusBadRequest, "Token required", nil, response.ErrorDetail{Code: apperrors.CodeInvalidInput}), nil
	}

	key := req.IdempotencyKey
	if key == "" {
		key = header(request, checkins.IdempotencyHeader)
	}
	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = request.RequestContext.Identity.SourceIP
	}

	result, err := h.service.Scan(ctx, eventID, req.Token, key, checkins.Metadata{
		Operator: req.Operator,
		DeviceID: deviceID,
		Location: req.Location,
		Source:   checkins.SourceLambda,
	})
	if err != nil {
		if appErr, ok := apperrors.As(err); ok && appErr.Kind != apperrors.KindInternal {
			return respond(apperrors.HTTPStatus(err), appErr.Message, nil, response.ErrorDetail{Code: appErr.Code, Fields: appErr.Fields}), nil
		}
		return respond(http.StatusInternalServerError, "internal server error", nil, response.ErrorDetail{Code: apperrors.CodeInternal}), nil
	}

	if result.Already {
		return respond(http.StatusOK, "Attendee is already checked in", result, nil), nil
	}
	return respond(http.StatusCreated, "Check-in recorded successfully", result, nil), nil
}

// scanEventID takes the event from the path parameters, falling back to the raw path
func scanEventID(request events.APIGatewayProxyRequest) (string, bool) {
	if id := request.PathParameters["eventId"]; id != "" {
		return id, true
	}
	parts := strings.Split(strings.Trim(request.Path, "/"), "/")
	n := len(parts)
	if n >= 4 && parts[n-4] == "events" && parts[n-2] == "checkins" && parts[n-1] == "scan" {
		return parts[n-3], true
	}
	return "", false
}

func header(request events.APIGatewayProxyRequest, name string) string {
	for k, v := range request.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func respond(code int, message string, data interface{}, errs interface{}) events.APIGatewayProxyResponse {
	status := "success"
	if code >= http.StatusBadRequest {
		status = "error"
	}
	body, _ := json.Marshal(response.StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errs,
	})
	return events.APIGatewayProxyResponse{
		StatusCode: code,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}
