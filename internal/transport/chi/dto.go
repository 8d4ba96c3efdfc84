package chi

import (
	"fmt"

	"github.com/docsift/docsift/internal/domain"
	"github.com/docsift/docsift/internal/domain/search/filter"
	"github.com/docsift/docsift/internal/domain/search/kind"
	"github.com/docsift/docsift/internal/domain/search/mode"
	"github.com/docsift/docsift/internal/domain/search/query"
	"github.com/docsift/docsift/internal/domain/search/result"
	searchuc "github.com/docsift/docsift/internal/usecase/search"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type dateRangeDTO struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

type pageRangeDTO struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

type filtersDTO struct {
	DateRange *dateRangeDTO `json:"date_range,omitempty"`
	FileTypes []string      `json:"file_types,omitempty"`
	PageRange *pageRangeDTO `json:"page_range,omitempty"`
	Tags      []string      `json:"tags,omitempty"`
	Folders   []string      `json:"folders,omitempty"`
	FileNames []string      `json:"file_names,omitempty"`
}

type searchRequest struct {
	Query          string      `json:"query"`
	Mode           string      `json:"mode,omitempty"`
	TargetDocument string      `json:"target_document,omitempty"`
	SearchType     string      `json:"search_type,omitempty"`
	TopN           int         `json:"top_n,omitempty"`
	Threshold      float64     `json:"threshold,omitempty"`
	ExpandSynonyms bool        `json:"expand_synonyms,omitempty"`
	Filters        *filtersDTO `json:"filters,omitempty"`
}

type resultItem struct {
	FileName     string   `json:"file_name"`
	Page         int      `json:"page"`
	Text         string   `json:"text"`
	Score        float64  `json:"score"`
	Origin       string   `json:"origin"`
	MatchedTerms []string `json:"matched_terms,omitempty"`
	SimilarTerms []string `json:"similar_terms,omitempty"`
}

type searchResponse struct {
	Results    []resultItem `json:"results"`
	Total      int          `json:"total"`
	Candidates int          `json:"candidates"`
	Partial    bool         `json:"partial,omitempty"`
}

type extractsResponse struct {
	Results []resultItem `json:"results"`
	Total   int          `json:"total"`
}

type historyEntryDTO struct {
	ID             string `json:"id"`
	Query          string `json:"query"`
	Mode           string `json:"mode"`
	TargetDocument string `json:"target_document,omitempty"`
	Filters        string `json:"filters,omitempty"`
	Timestamp      int64  `json:"timestamp"`
	ResultCount    int    `json:"result_count"`
}

type historyResponse struct {
	Entries []historyEntryDTO `json:"entries"`
	Total   int               `json:"total"`
}

type tableDTO struct {
	Num  int        `json:"num"`
	Data string     `json:"data"`
	BBox [4]float64 `json:"bbox,omitempty"`
}

type figureDTO struct {
	Num     int        `json:"num"`
	Caption string     `json:"caption"`
	BBox    [4]float64 `json:"bbox,omitempty"`
}

type chunkDTO struct {
	Page      int         `json:"page"`
	Text      string      `json:"text"`
	Embedding []float32   `json:"embedding"`
	Tables    []tableDTO  `json:"tables,omitempty"`
	Figures   []figureDTO `json:"figures,omitempty"`
}

type putDocumentRequest struct {
	UploadedAt int64      `json:"uploaded_at,omitempty"`
	FileType   string     `json:"file_type,omitempty"`
	PageCount  int        `json:"page_count,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Folder     string     `json:"folder,omitempty"`
	Chunks     []chunkDTO `json:"chunks"`
}

type documentItem struct {
	FileName   string   `json:"file_name"`
	UploadedAt int64    `json:"uploaded_at,omitempty"`
	FileType   string   `json:"file_type,omitempty"`
	PageCount  int      `json:"page_count,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Folder     string   `json:"folder,omitempty"`
}

type documentListResponse struct {
	Items []documentItem `json:"items"`
	Total int            `json:"total"`
}

func filtersFromDTO(dto *filtersDTO) (filter.Filter, error) {
	if dto == nil {
		return filter.Filter{}, nil
	}

	var opts []filter.Option
	if dto.DateRange != nil {
		opts = append(opts, filter.WithDateRange(dto.DateRange.Start, dto.DateRange.End))
	}
	if dto.PageRange != nil {
		opts = append(opts, filter.WithPageRange(dto.PageRange.First, dto.PageRange.Last))
	}
	if len(dto.FileTypes) > 0 {
		opts = append(opts, filter.WithFileTypes(dto.FileTypes...))
	}
	if len(dto.Tags) > 0 {
		opts = append(opts, filter.WithTags(dto.Tags...))
	}
	if len(dto.Folders) > 0 {
		opts = append(opts, filter.WithFolders(dto.Folders...))
	}
	if len(dto.FileNames) > 0 {
		opts = append(opts, filter.WithFileNames(dto.FileNames...))
	}

	f, err := filter.New(opts...)
	if err != nil {
		return filter.Filter{}, fmt.Errorf("%w: %v", domain.ErrInvalidQuery, err)
	}
	return f, nil
}

func queryFromRequest(req *searchRequest) (query.Query, error) {
	filters, err := filtersFromDTO(req.Filters)
	if err != nil {
		return query.Query{}, err
	}

	return query.New(
		req.Query,
		mode.Mode(req.Mode),
		req.TargetDocument,
		filters,
		kind.Kind(req.SearchType),
		req.TopN,
		req.Threshold,
		req.ExpandSynonyms,
	)
}

func resultToItem(r *result.Result) resultItem {
	return resultItem{
		FileName:     r.FileName(),
		Page:         r.Page(),
		Text:         r.Text(),
		Score:        r.NormalizedScore(),
		Origin:       string(r.Origin()),
		MatchedTerms: r.MatchedTerms(),
		SimilarTerms: r.SimilarTerms(),
	}
}

func searchResponseFrom(resp *searchuc.Response) searchResponse {
	items := make([]resultItem, len(resp.Results))
	for i := range resp.Results {
		items[i] = resultToItem(&resp.Results[i])
	}
	return searchResponse{
		Results:    items,
		Total:      len(items),
		Candidates: resp.Candidates,
		Partial:    resp.Partial,
	}
}

func documentFromPut(fileName string, req *putDocumentRequest) (domain.DocumentMeta, []domain.Chunk) {
	meta := domain.DocumentMeta{
		FileName:   fileName,
		UploadedAt: req.UploadedAt,
		FileType:   req.FileType,
		PageCount:  req.PageCount,
		Tags:       req.Tags,
		Folder:     req.Folder,
	}

	chunks := make([]domain.Chunk, len(req.Chunks))
	for i, c := range req.Chunks {
		chunk := domain.Chunk{
			FileName:  fileName,
			Page:      c.Page,
			Text:      c.Text,
			Embedding: c.Embedding,
		}
		for _, tb := range c.Tables {
			chunk.Tables = append(chunk.Tables, domain.Table{Num: tb.Num, Data: tb.Data, BBox: tb.BBox})
		}
		for _, fg := range c.Figures {
			chunk.Figures = append(chunk.Figures, domain.Figure{Num: fg.Num, Caption: fg.Caption, BBox: fg.BBox})
		}
		chunks[i] = chunk
	}
	return meta, chunks
}

func documentToItem(meta *domain.DocumentMeta) documentItem {
	return documentItem{
		FileName:   meta.FileName,
		UploadedAt: meta.UploadedAt,
		FileType:   meta.FileType,
		PageCount:  meta.PageCount,
		Tags:       meta.Tags,
		Folder:     meta.Folder,
	}
}

func historyEntryToDTO(e *domain.HistoryEntry) historyEntryDTO {
	return historyEntryDTO{
		ID:             e.ID,
		Query:          e.Query,
		Mode:           e.Mode,
		TargetDocument: e.TargetDocument,
		Filters:        e.Filters,
		Timestamp:      e.Timestamp,
		ResultCount:    e.ResultCount,
	}
}
