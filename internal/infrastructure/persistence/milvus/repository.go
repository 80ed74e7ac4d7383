// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"context"
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Repository 向量检索仓储
type Repository struct {
	client *Client
	dim    int
}

// NewRepository 创建向量检索仓储
func NewRepository(client *Client, dim int) *Repository {
	return &Repository{client: client, dim: dim}
}

// SearchParams 检索参数
type SearchParams struct {
	QueryVector []float32
	TopK        int
	Document    string
}

// SearchResult 检索结果
type SearchResult struct {
	ID           string
	Score        float32
	DocumentName string
	PageNumber   int64
	TextContent  string
}

// CreateCollection 创建集合
func (r *Repository) CreateCollection(ctx context.Context, schema *entity.Schema) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateCollection",
		trace.WithAttributes(attribute.String("collection", schema.CollectionName)))
	defer span.End()

	collName := r.client.CollectionName(schema.CollectionName)
	schema.CollectionName = collName

	err := r.client.milvus.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// CreateIndex 创建 HNSW 索引
func (r *Repository) CreateIndex(ctx context.Context, collection string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateIndex",
		trace.WithAttributes(attribute.String("collection", collection)))
	defer span.End()

	collName := r.client.CollectionName(collection)

	idx, err := entity.NewIndexHNSW(
		entity.COSINE,
		r.client.config.HNSWM,
		r.client.config.HNSWEfConstruction,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = r.client.milvus.CreateIndex(ctx, collName, "vector", idx, false)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// SearchFragments 检索语料片段
func (r *Repository) SearchFragments(ctx context.Context, params *SearchParams) ([]*SearchResult, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.SearchFragments",
		trace.WithAttributes(attribute.Int("top_k", params.TopK)))
	defer span.End()

	collName := r.client.CollectionName(CollectionFragments)

	filter := ""
	if params.Document != "" {
		filter = fmt.Sprintf(`document_name == "%s"`, params.Document)
	}

	sp, err := entity.NewIndexHNSWSearchParam(128)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	results, err := r.client.milvus.Search(ctx,
		collName,
		nil,
		filter,
		[]string{"id", "document_name", "page_number", "text_content"},
		[]entity.Vector{entity.FloatVector(params.QueryVector)},
		"vector",
		entity.COSINE,
		params.TopK,
		sp,
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var searchResults []*SearchResult
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			sr := &SearchResult{
				Score: result.Scores[i],
			}

			if idCol, ok := result.Fields.GetColumn("id").(*entity.ColumnVarChar); ok {
				sr.ID = idCol.Data()[i]
			}
			if docCol, ok := result.Fields.GetColumn("document_name").(*entity.ColumnVarChar); ok {
				sr.DocumentName = docCol.Data()[i]
			}
			if pageCol, ok := result.Fields.GetColumn("page_number").(*entity.ColumnInt64); ok {
				sr.PageNumber = pageCol.Data()[i]
			}
			if textCol, ok := result.Fields.GetColumn("text_content").(*entity.ColumnVarChar); ok {
				sr.TextContent = textCol.Data()[i]
			}

			searchResults = append(searchResults, sr)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(searchResults)))
	return searchResults, nil
}

// ListFragments 按主键游标扫描片段（用于规划取样）
func (r *Repository) ListFragments(ctx context.Context, afterID string, limit int) ([]*FragmentRow, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.ListFragments",
		trace.WithAttributes(attribute.Int("limit", limit)))
	defer span.End()

	collName := r.client.CollectionName(CollectionFragments)

	expr := `id != ""`
	if afterID != "" {
		expr = fmt.Sprintf(`id > "%s"`, afterID)
	}

	rs, err := r.client.milvus.Query(ctx, collName, nil, expr,
		[]string{"id", "document_name", "page_number", "fingerprint", "text_content"},
		nil,
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query fragments: %w", err)
	}

	var (
		ids, docs, fps, texts []string
		pages                 []int64
	)
	for _, col := range rs {
		switch col.Name() {
		case "id":
			if c, ok := col.(*entity.ColumnVarChar); ok {
				ids = c.Data()
			}
		case "document_name":
			if c, ok := col.(*entity.ColumnVarChar); ok {
				docs = c.Data()
			}
		case "page_number":
			if c, ok := col.(*entity.ColumnInt64); ok {
				pages = c.Data()
			}
		case "fingerprint":
			if c, ok := col.(*entity.ColumnVarChar); ok {
				fps = c.Data()
			}
		case "text_content":
			if c, ok := col.(*entity.ColumnVarChar); ok {
				texts = c.Data()
			}
		}
	}

	rows := make([]*FragmentRow, 0, len(ids))
	for i := range ids {
		if limit > 0 && len(rows) >= limit {
			break
		}
		row := &FragmentRow{ID: ids[i]}
		if i < len(docs) {
			row.DocumentName = docs[i]
		}
		if i < len(pages) {
			row.PageNumber = pages[i]
		}
		if i < len(fps) {
			row.Fingerprint = fps[i]
		}
		if i < len(texts) {
			row.TextContent = texts[i]
		}
		rows = append(rows, row)
	}

	span.SetAttributes(attribute.Int("result_count", len(rows)))
	return rows, nil
}

// CountFragments 统计集合内片段总数
func (r *Repository) CountFragments(ctx context.Context) (int64, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return 0, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CountFragments")
	defer span.End()

	collName := r.client.CollectionName(CollectionFragments)

	stats, err := r.client.milvus.GetCollectionStatistics(ctx, collName)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to get collection statistics: %w", err)
	}

	count, err := strconv.ParseInt(stats["row_count"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse row count: %w", err)
	}
	return count, nil
}

// InsertFragments 插入语料片段
func (r *Repository) InsertFragments(ctx context.Context, rows []*FragmentRow) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.InsertFragments",
		trace.WithAttributes(attribute.Int("count", len(rows))))
	defer span.End()

	if len(rows) == 0 {
		return nil
	}

	collName := r.client.CollectionName(CollectionFragments)

	ids := make([]string, len(rows))
	vectors := make([][]float32, len(rows))
	docs := make([]string, len(rows))
	pages := make([]int64, len(rows))
	fps := make([]string, len(rows))
	texts := make([]string, len(rows))

	for i, row := range rows {
		ids[i] = row.ID
		vectors[i] = row.Vector
		docs[i] = row.DocumentName
		pages[i] = row.PageNumber
		fps[i] = row.Fingerprint
		texts[i] = row.TextContent
	}

	idCol := entity.NewColumnVarChar("id", ids)
	vectorCol := entity.NewColumnFloatVector("vector", r.dim, vectors)
	docCol := entity.NewColumnVarChar("document_name", docs)
	pageCol := entity.NewColumnInt64("page_number", pages)
	fpCol := entity.NewColumnVarChar("fingerprint", fps)
	textCol := entity.NewColumnVarChar("text_content", texts)

	_, err := r.client.milvus.Insert(ctx, collName, "",
		idCol, vectorCol, docCol, pageCol, fpCol, textCol)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to insert fragments: %w", err)
	}

	return nil
}

// DeleteByDocument 删除指定来源文档的所有片段
func (r *Repository) DeleteByDocument(ctx context.Context, document string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	if document == "" {
		return nil
	}
	ctx, span := tracer.Start(ctx, "milvus.DeleteByDocument",
		trace.WithAttributes(attribute.String("document", document)))
	defer span.End()

	collName := r.client.CollectionName(CollectionFragments)
	filter := fmt.Sprintf(`document_name == "%s"`, document)

	if err := r.client.milvus.Delete(ctx, collName, "", filter); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete fragments: %w", err)
	}
	return nil
}

// EnsureFragmentsCollection 确保 handbook_fragments 集合与索引可用（不存在则创建）。
// 约束：不会做 drop/rebuild 等破坏性操作。
func (r *Repository) EnsureFragmentsCollection(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}

	exists, err := r.client.HasCollection(ctx, CollectionFragments)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.CreateCollection(ctx, FragmentsSchema(r.dim)); err != nil {
			return err
		}
		// 新建集合时创建索引；若失败，允许后续由运维介入。
		_ = r.CreateIndex(ctx, CollectionFragments)
	}

	return r.client.LoadCollection(ctx, CollectionFragments)
}
