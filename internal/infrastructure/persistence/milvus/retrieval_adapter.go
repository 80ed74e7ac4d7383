package milvus

import (
	"context"

	"handbook-ai-api/internal/application/retrieval"
)

type RetrievalVectorRepository struct {
	repo *Repository
}

func NewRetrievalVectorRepository(repo *Repository) *RetrievalVectorRepository {
	return &RetrievalVectorRepository{repo: repo}
}

var _ retrieval.VectorRepository = (*RetrievalVectorRepository)(nil)

func (r *RetrievalVectorRepository) EnsureFragmentsCollection(ctx context.Context) error {
	if r == nil || r.repo == nil {
		return retrieval.ErrVectorDisabled
	}
	return r.repo.EnsureFragmentsCollection(ctx)
}

func (r *RetrievalVectorRepository) SearchFragments(ctx context.Context, params *retrieval.VectorSearchParams) ([]*retrieval.VectorSearchResult, error) {
	if r == nil || r.repo == nil {
		return nil, retrieval.ErrVectorDisabled
	}
	if params == nil {
		return nil, nil
	}

	out, err := r.repo.SearchFragments(ctx, &SearchParams{
		QueryVector: params.QueryVector,
		TopK:        params.TopK,
		Document:    params.Document,
	})
	if err != nil {
		return nil, err
	}

	results := make([]*retrieval.VectorSearchResult, 0, len(out))
	for i := range out {
		v := out[i]
		if v == nil {
			continue
		}
		results = append(results, &retrieval.VectorSearchResult{
			ID:           v.ID,
			Score:        v.Score,
			DocumentName: v.DocumentName,
			PageNumber:   int(v.PageNumber),
			TextContent:  v.TextContent,
		})
	}
	return results, nil
}

func (r *RetrievalVectorRepository) ListFragments(ctx context.Context, afterID string, limit int) ([]*retrieval.VectorFragment, error) {
	if r == nil || r.repo == nil {
		return nil, retrieval.ErrVectorDisabled
	}

	rows, err := r.repo.ListFragments(ctx, afterID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]*retrieval.VectorFragment, 0, len(rows))
	for i := range rows {
		row := rows[i]
		if row == nil {
			continue
		}
		out = append(out, &retrieval.VectorFragment{
			ID:           row.ID,
			DocumentName: row.DocumentName,
			PageNumber:   int(row.PageNumber),
			Fingerprint:  row.Fingerprint,
			TextContent:  row.TextContent,
		})
	}
	return out, nil
}

func (r *RetrievalVectorRepository) CountFragments(ctx context.Context) (int64, error) {
	if r == nil || r.repo == nil {
		return 0, retrieval.ErrVectorDisabled
	}
	return r.repo.CountFragments(ctx)
}

func (r *RetrievalVectorRepository) InsertFragments(ctx context.Context, fragments []*retrieval.VectorFragment) error {
	if r == nil || r.repo == nil {
		return retrieval.ErrVectorDisabled
	}
	if len(fragments) == 0 {
		return nil
	}

	rows := make([]*FragmentRow, 0, len(fragments))
	for i := range fragments {
		f := fragments[i]
		if f == nil {
			continue
		}
		rows = append(rows, &FragmentRow{
			ID:           f.ID,
			Vector:       f.Vector,
			DocumentName: f.DocumentName,
			PageNumber:   int64(f.PageNumber),
			Fingerprint:  f.Fingerprint,
			TextContent:  f.TextContent,
		})
	}
	return r.repo.InsertFragments(ctx, rows)
}

func (r *RetrievalVectorRepository) DeleteByDocument(ctx context.Context, document string) error {
	if r == nil || r.repo == nil {
		return retrieval.ErrVectorDisabled
	}
	return r.repo.DeleteByDocument(ctx, document)
}
