package api

import (
	"github.com/docgrid/docgrid/internal/config"
	"github.com/docgrid/docgrid/pkg/openapi"
)

// buildSpec assembles the OpenAPI document for the API module. Paths are
// relative to the module prefix; the configured base path is added as the
// server URL.
func buildSpec(cfg *config.Config) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	registerSchemas(spec)
	registerColumnPaths(spec)
	registerDocumentPaths(spec)
	registerCollectionPaths(spec)
	registerProcessingPaths(spec)

	return spec
}

func registerSchemas(spec *openapi.Spec) {
	spec.Components.Schemas["Column"] = &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":                 {Type: "string", Format: "uuid"},
			"name":               {Type: "string"},
			"prompt":             {Type: "string", Description: "Extraction instruction sent to the AI agent"},
			"type":               {Type: "string", Enum: []any{"text", "date", "price", "location", "person", "organization", "status", "collection"}},
			"ai_model":           {Type: "string", Description: "Model override for this column; empty uses the configured default"},
			"extraction_enabled": {Type: "boolean"},
			"created_at":         {Type: "string", Format: "date-time"},
			"updated_at":         {Type: "string", Format: "date-time"},
		},
	}

	spec.Components.Schemas["Document"] = &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":            {Type: "string", Format: "uuid"},
			"project_id":    {Type: "string", Format: "uuid"},
			"filename":      {Type: "string"},
			"content_type":  {Type: "string"},
			"extension":     {Type: "string"},
			"size_bytes":    {Type: "integer"},
			"page_count":    {Type: "integer"},
			"storage_key":   {Type: "string"},
			"status":        {Type: "string", Enum: []any{"pending", "processing", "completed", "failed"}},
			"progress":      {Type: "integer", Description: "Processing progress from 0 to 100"},
			"error_message": {Type: "string"},
			"error_code":    {Type: "string"},
			"uploaded_at":   {Type: "string", Format: "date-time"},
			"updated_at":    {Type: "string", Format: "date-time"},
		},
	}

	spec.Components.Schemas["DocumentValue"] = &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"value":        {Type: "string"},
			"type":         {Type: "string"},
			"status":       {Type: "string", Enum: []any{"yes", "no", "pending"}},
			"confidence":   {Type: "number", Description: "Extraction confidence from 0 to 1"},
			"extracted_at": {Type: "string", Format: "date-time"},
			"method":       {Type: "string", Enum: []any{"ai", "manual", "ocr"}},
			"model":        {Type: "string"},
			"version":      {Type: "string"},
		},
	}

	spec.Components.Schemas["Collection"] = &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":         {Type: "string", Format: "uuid"},
			"project_id": {Type: "string", Format: "uuid"},
			"name":       {Type: "string"},
			"documents":  {Type: "array", Items: &openapi.Schema{Type: "string", Format: "uuid"}},
			"settings": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"auto_aggregate":    {Type: "boolean"},
					"aggregation_order": {Type: "array", Items: &openapi.Schema{Type: "string", Format: "uuid"}},
					"hidden_documents":  {Type: "array", Items: &openapi.Schema{Type: "string", Format: "uuid"}},
				},
			},
			"created_at": {Type: "string", Format: "date-time"},
			"updated_at": {Type: "string", Format: "date-time"},
		},
	}

	spec.Components.Schemas["CollectionValue"] = &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"value":            {Type: "string"},
			"type":             {Type: "string"},
			"status":           {Type: "string", Enum: []any{"yes", "no", "pending"}},
			"confidence":       {Type: "number"},
			"extracted_at":     {Type: "string", Format: "date-time"},
			"aggregation_type": {Type: "string", Enum: []any{"single", "concatenated"}},
			"source_documents": {Type: "array", Items: &openapi.Schema{Type: "string", Format: "uuid"}},
		},
	}

	spec.Components.Schemas["ProcessResult"] = &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"document_id": {Type: "string", Format: "uuid"},
			"status":      {Type: "string", Enum: []any{"pending", "processing", "completed", "failed"}},
			"error":       {Type: "string"},
		},
	}

	spec.Components.Schemas["ProcessingEvent"] = &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":         {Type: "string", Format: "uuid"},
			"entity_id":  {Type: "string", Format: "uuid"},
			"action":     {Type: "string"},
			"details":    {Type: "object"},
			"created_at": {Type: "string", Format: "date-time"},
		},
	}
}

func registerColumnPaths(spec *openapi.Spec) {
	spec.Paths["/columns"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List columns",
			Tags:    []string{"columns"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("page", "integer", "Page number", false),
				openapi.QueryParam("page_size", "integer", "Results per page", false),
				openapi.QueryParam("name", "string", "Filter by name substring", false),
				openapi.QueryParam("type", "string", "Filter by column type", false),
				openapi.QueryParam("extraction_enabled", "boolean", "Filter by extraction flag", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated column list", "Column"),
			},
		},
		Post: &openapi.Operation{
			Summary:     "Create column",
			Tags:        []string{"columns"},
			RequestBody: openapi.RequestBodyJSON("Column", true),
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Created column", "Column"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/columns/search"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Search columns",
			Tags:        []string{"columns"},
			RequestBody: openapi.RequestBodyJSON("PageRequest", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated column list", "Column"),
			},
		},
	}

	spec.Paths["/columns/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find column",
			Tags:       []string{"columns"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Column ID")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Column", "Column"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Put: &openapi.Operation{
			Summary:     "Update column",
			Tags:        []string{"columns"},
			Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Column ID")},
			RequestBody: openapi.RequestBodyJSON("Column", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Updated column", "Column"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Delete: &openapi.Operation{
			Summary:    "Delete column",
			Tags:       []string{"columns"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Column ID")},
			Responses: map[int]*openapi.Response{
				204: {Description: "Deleted"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}
}

func registerDocumentPaths(spec *openapi.Spec) {
	spec.Paths["/documents"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List documents",
			Tags:    []string{"documents"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("page", "integer", "Page number", false),
				openapi.QueryParam("page_size", "integer", "Results per page", false),
				openapi.QueryParam("status", "string", "Filter by processing status", false),
				openapi.QueryParam("project_id", "string", "Filter by project", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated document list", "Document"),
			},
		},
		Post: &openapi.Operation{
			Summary:     "Upload document",
			Description: "Multipart upload with a project_id field and a single file.",
			Tags:        []string{"documents"},
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Created document", "Document"),
				400: openapi.ResponseRef("BadRequest"),
				413: {Description: "File exceeds the upload size limit"},
			},
		},
	}

	spec.Paths["/documents/batch"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Upload documents in batch",
			Description: "Multipart upload with a project_id field and multiple files. Returns a per-file result list; failures do not abort the batch.",
			Tags:        []string{"documents"},
			Responses: map[int]*openapi.Response{
				200: {Description: "Per-file upload results"},
			},
		},
	}

	spec.Paths["/documents/search"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Search documents",
			Tags:        []string{"documents"},
			RequestBody: openapi.RequestBodyJSON("PageRequest", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated document list", "Document"),
			},
		},
	}

	spec.Paths["/documents/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find document",
			Tags:       []string{"documents"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Document ID")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Document", "Document"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Delete: &openapi.Operation{
			Summary:    "Delete document",
			Tags:       []string{"documents"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Document ID")},
			Responses: map[int]*openapi.Response{
				204: {Description: "Deleted"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/documents/{id}/download"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Download original file",
			Tags:       []string{"documents"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Document ID")},
			Responses: map[int]*openapi.Response{
				200: {Description: "File stream with original content type"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/documents/{id}/values"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "List extracted values",
			Tags:       []string{"documents"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Document ID")},
			Responses: map[int]*openapi.Response{
				200: {Description: "Values keyed by column ID"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/documents/{id}/values/{columnId}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "Find extracted value",
			Tags:    []string{"documents"},
			Parameters: []*openapi.Parameter{
				openapi.PathParam("id", "Document ID"),
				openapi.PathParam("columnId", "Column ID"),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Extracted value", "DocumentValue"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Put: &openapi.Operation{
			Summary:     "Override value manually",
			Description: "Stores a manual value for the column. Manual values carry the manual method and survive reprocessing unchanged until overwritten.",
			Tags:        []string{"documents"},
			Parameters: []*openapi.Parameter{
				openapi.PathParam("id", "Document ID"),
				openapi.PathParam("columnId", "Column ID"),
			},
			RequestBody: openapi.RequestBodyJSON("DocumentValue", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Stored value", "DocumentValue"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/documents/{id}/events"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "List processing events",
			Tags:       []string{"documents"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Document ID")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Ordered event trail", "ProcessingEvent"),
			},
		},
	}
}

func registerCollectionPaths(spec *openapi.Spec) {
	spec.Paths["/collections"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List collections",
			Tags:    []string{"collections"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("page", "integer", "Page number", false),
				openapi.QueryParam("page_size", "integer", "Results per page", false),
				openapi.QueryParam("name", "string", "Filter by name substring", false),
				openapi.QueryParam("project_id", "string", "Filter by project", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated collection list", "Collection"),
			},
		},
		Post: &openapi.Operation{
			Summary:     "Create collection",
			Tags:        []string{"collections"},
			RequestBody: openapi.RequestBodyJSON("Collection", true),
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Created collection", "Collection"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/collections/search"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Search collections",
			Tags:        []string{"collections"},
			RequestBody: openapi.RequestBodyJSON("PageRequest", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated collection list", "Collection"),
			},
		},
	}

	spec.Paths["/collections/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find collection",
			Tags:       []string{"collections"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Collection ID")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Collection", "Collection"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Put: &openapi.Operation{
			Summary:     "Update collection",
			Tags:        []string{"collections"},
			Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Collection ID")},
			RequestBody: openapi.RequestBodyJSON("Collection", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Updated collection", "Collection"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Delete: &openapi.Operation{
			Summary:    "Delete collection",
			Tags:       []string{"collections"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Collection ID")},
			Responses: map[int]*openapi.Response{
				204: {Description: "Deleted"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/collections/{id}/documents/{documentId}"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary: "Add document to collection",
			Tags:    []string{"collections"},
			Parameters: []*openapi.Parameter{
				openapi.PathParam("id", "Collection ID"),
				openapi.PathParam("documentId", "Document ID"),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Updated collection", "Collection"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Delete: &openapi.Operation{
			Summary: "Remove document from collection",
			Tags:    []string{"collections"},
			Parameters: []*openapi.Parameter{
				openapi.PathParam("id", "Collection ID"),
				openapi.PathParam("documentId", "Document ID"),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Updated collection", "Collection"),
				400: openapi.ResponseRef("BadRequest"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/collections/{id}/values"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "List aggregated values",
			Tags:       []string{"collections"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Collection ID")},
			Responses: map[int]*openapi.Response{
				200: {Description: "Aggregated values keyed by column ID"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/collections/{id}/aggregate/{columnId}"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary: "Recompute aggregation for a column",
			Tags:    []string{"collections"},
			Parameters: []*openapi.Parameter{
				openapi.PathParam("id", "Collection ID"),
				openapi.PathParam("columnId", "Column ID"),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Aggregated value", "CollectionValue"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}
}

func registerProcessingPaths(spec *openapi.Spec) {
	spec.Paths["/documents/{id}/process"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Process document",
			Description: "Runs the extraction pipeline for the document. Returns 409 when the document is already processing.",
			Tags:        []string{"processing"},
			Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Document ID")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Processing result", "ProcessResult"),
				404: openapi.ResponseRef("NotFound"),
				409: {Description: "Document is already processing"},
			},
		},
	}

	spec.Paths["/documents/{id}/reprocess"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Reprocess document",
			Description: "Re-runs extraction for a document in a terminal state. Manual values are preserved.",
			Tags:        []string{"processing"},
			Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Document ID")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Processing result", "ProcessResult"),
				404: openapi.ResponseRef("NotFound"),
				409: {Description: "Document is already processing"},
			},
		},
	}

	spec.Paths["/documents/process-pending"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Process all pending documents",
			Description: "Runs bounded concurrent extraction over every pending document and returns per-document results.",
			Tags:        []string{"processing"},
			Responses: map[int]*openapi.Response{
				200: {Description: "Per-document processing results"},
			},
		},
	}
}
