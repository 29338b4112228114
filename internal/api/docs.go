package api

import (
	"fmt"
	"net/http"

	"github.com/opsgate/opsgate/internal/config"
	"github.com/opsgate/opsgate/pkg/openapi"
)

// newDocsHandler builds the OpenAPI document for the API surface and returns
// a handler serving it as JSON.
func newDocsHandler(cfg *config.Config) (http.HandlerFunc, error) {
	spec := buildSpec(cfg)

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi spec: %w", err)
	}

	return openapi.ServeSpec(data), nil
}

func buildSpec(cfg *config.Config) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.Docs.Title, cfg.Version)
	spec.SetDescription(cfg.API.Docs.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(map[string]*openapi.Schema{
		"SubmitCommand": {
			Type:     "object",
			Required: []string{"content", "tenant_id"},
			Properties: map[string]*openapi.Schema{
				"content":      {Type: "string", Description: "Natural-language request text"},
				"source":       {Type: "string", Description: "Submission channel", Example: "email"},
				"tenant_id":    {Type: "string", Description: "Tenant the request belongs to"},
				"client_label": {Type: "string", Description: "Display label for the submitting client"},
				"context":      {Type: "object", Description: "Additional request context"},
			},
		},
		"Receipt": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"request_id":  {Type: "string", Format: "uuid"},
				"accepted_at": {Type: "string", Format: "date-time"},
			},
		},
		"Approval": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":         {Type: "string", Format: "uuid"},
				"tenant_id":  {Type: "string"},
				"action":     {Type: "string", Description: "Classified action type"},
				"risk_score": {Type: "integer", Description: "Risk score from 0 to 100"},
				"summary":    {Type: "string"},
				"actions":    {Type: "array", Items: &openapi.Schema{Type: "object"}},
				"status": {
					Type: "string",
					Enum: []any{"pending", "approved", "rejected", "expired", "partially_executed"},
				},
				"created_at": {Type: "string", Format: "date-time"},
				"expires_at": {Type: "string", Format: "date-time"},
				"decided_at": {Type: "string", Format: "date-time"},
				"approver":   {Type: "string"},
				"notes":      {Type: "string"},
				"results":    {Type: "array", Items: &openapi.Schema{Type: "object"}},
			},
		},
		"DecisionCommand": {
			Type:     "object",
			Required: []string{"decision", "approver", "confirmation"},
			Properties: map[string]*openapi.Schema{
				"decision":     {Type: "string", Enum: []any{"approve", "reject"}},
				"approver":     {Type: "string", Description: "Approver identity; overridden by verified token identity when auth is enabled"},
				"notes":        {Type: "string"},
				"confirmation": openapi.SchemaRef("Confirmation"),
				"secondary": {
					Description: "Second confirmation for dual-approval tenants on critical actions",
					Ref:         "#/components/schemas/Confirmation",
				},
			},
		},
		"Confirmation": {
			Type:     "object",
			Required: []string{"method", "device_id", "hash", "timestamp", "successful"},
			Properties: map[string]*openapi.Schema{
				"method":     {Type: "string", Example: "faceid"},
				"device_id":  {Type: "string"},
				"hash":       {Type: "string", Pattern: "^[0-9a-f]{64}$"},
				"timestamp":  {Type: "string", Format: "date-time"},
				"successful": {Type: "boolean"},
			},
		},
		"DecisionResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"approval": openapi.SchemaRef("Approval"),
				"results":  {Type: "array", Items: &openapi.Schema{Type: "object"}},
			},
		},
		"AuditEntry": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                {Type: "string", Format: "uuid"},
				"entity_id":         {Type: "string"},
				"tenant_id":         {Type: "string"},
				"action":            {Type: "string"},
				"actor":             {Type: "string"},
				"approval_id":       {Type: "string", Format: "uuid"},
				"confirmation_hash": {Type: "string"},
				"success":           {Type: "boolean"},
				"detail":            {Type: "object"},
				"risk_score":        {Type: "integer"},
				"created_at":        {Type: "string", Format: "date-time"},
			},
		},
		"ExportRequest": {
			Type:     "object",
			Required: []string{"tenant_id", "from", "to"},
			Properties: map[string]*openapi.Schema{
				"tenant_id": {Type: "string"},
				"from":      {Type: "string", Format: "date-time"},
				"to":        {Type: "string", Format: "date-time"},
			},
		},
		"BlobMetadata": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"key":           {Type: "string"},
				"contentType":   {Type: "string"},
				"contentLength": {Type: "integer"},
				"lastModified":  {Type: "string", Format: "date-time"},
			},
		},
	})

	spec.Paths["/requests"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Submit a request for classification",
			Description: "Accepts a natural-language request, queues it for classification, and returns a receipt. Low-risk unambiguous requests execute automatically; everything else produces a pending approval.",
			Tags:        []string{"requests"},
			RequestBody: openapi.RequestBodyJSON("SubmitCommand", true),
			Responses: map[int]*openapi.Response{
				202: openapi.ResponseJSON("Request accepted", "Receipt"),
				400: openapi.ResponseRef("BadRequest"),
				429: {Description: "Intake queue is full"},
			},
		},
	}

	spec.Paths["/approvals"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List approvals",
			Tags:    []string{"approvals"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("tenant_id", "string", "Filter by tenant", false),
				openapi.QueryParam("status", "string", "Filter by lifecycle status", false),
				openapi.QueryParam("page", "integer", "Page number", false),
				openapi.QueryParam("page_size", "integer", "Results per page", false),
			},
			Responses: map[int]*openapi.Response{
				200: {Description: "Paginated approvals"},
			},
		},
	}

	spec.Paths["/approvals/pending"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:     "List actionable approvals for a tenant",
			Description: "Returns pending approvals whose decision window has not elapsed, ordered most urgent first.",
			Tags:        []string{"approvals"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("tenant_id", "string", "Tenant to list for", true),
			},
			Responses: map[int]*openapi.Response{
				200: {
					Description: "Pending approvals",
					Content: map[string]*openapi.MediaType{
						"application/json": {
							Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Approval")},
						},
					},
				},
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/approvals/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Get an approval",
			Tags:       []string{"approvals"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Approval id")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("The approval", "Approval"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/approvals/{id}/decision"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Decide an approval",
			Description: "Approves or rejects a pending approval. Requires a biometric confirmation matching the approval's risk tier. Approval triggers execution before the decision call returns.",
			Tags:        []string{"approvals"},
			Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Approval id")},
			RequestBody: openapi.RequestBodyJSON("DecisionCommand", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Decision outcome", "DecisionResult"),
				400: openapi.ResponseRef("BadRequest"),
				404: openapi.ResponseRef("NotFound"),
				409: openapi.ResponseRef("Conflict"),
				410: {Description: "Approval window expired"},
			},
		},
	}

	spec.Paths["/audit"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "Query the audit ledger",
			Tags:    []string{"audit"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("tenant_id", "string", "Filter by tenant", false),
				openapi.QueryParam("approval_id", "string", "Filter by approval", false),
				openapi.QueryParam("actor", "string", "Filter by actor", false),
				openapi.QueryParam("from", "string", "Inclusive RFC 3339 lower bound", false),
				openapi.QueryParam("to", "string", "Inclusive RFC 3339 upper bound", false),
			},
			Responses: map[int]*openapi.Response{
				200: {Description: "Paginated audit entries"},
			},
		},
	}

	spec.Paths["/audit/export"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Export a ledger slice to blob storage",
			Tags:        []string{"audit"},
			RequestBody: openapi.RequestBodyJSON("ExportRequest", true),
			Responses: map[int]*openapi.Response{
				201: {Description: "Export written; response carries the blob key"},
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/storage"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List stored blobs",
			Tags:    []string{"storage"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("prefix", "string", "Key prefix filter", false),
				openapi.QueryParam("marker", "string", "Continuation marker from a prior page", false),
				openapi.QueryParam("max_results", "integer", "Page size cap", false),
			},
			Responses: map[int]*openapi.Response{
				200: {Description: "Blob metadata page"},
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/storage/{key}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "Get blob metadata",
			Tags:    []string{"storage"},
			Parameters: []*openapi.Parameter{
				{Name: "key", In: "path", Required: true, Schema: &openapi.Schema{Type: "string"}},
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Blob metadata", "BlobMetadata"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/storage/download/{key}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "Download a blob",
			Tags:    []string{"storage"},
			Parameters: []*openapi.Parameter{
				{Name: "key", In: "path", Required: true, Schema: &openapi.Schema{Type: "string"}},
			},
			Responses: map[int]*openapi.Response{
				200: {Description: "Blob content stream"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	return spec
}
