// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// CollectionFragments 语料片段集合
	CollectionFragments = "handbook_fragments"
)

// FragmentsSchema 语料片段 Collection Schema
func FragmentsSchema(dim int) *entity.Schema {
	return &entity.Schema{
		CollectionName: CollectionFragments,
		Description:    "Source corpus fragments for grounded handbook generation",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": strconv.Itoa(dim),
				},
			},
			{
				Name:     "document_name",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "512",
				},
			},
			{
				Name:     "page_number",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "fingerprint",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "40",
				},
			},
			{
				Name:     "text_content",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
		},
	}
}

// FragmentRow 语料片段数据结构
type FragmentRow struct {
	ID           string    `json:"id"`
	Vector       []float32 `json:"vector"`
	DocumentName string    `json:"document_name"`
	PageNumber   int64     `json:"page_number"`
	Fingerprint  string    `json:"fingerprint"`
	TextContent  string    `json:"text_content"`
}
