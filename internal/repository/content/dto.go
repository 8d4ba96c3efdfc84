package content

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/docsift/docsift/internal/domain"
)

// Hash field names for chunk records. The FT index schema in EnsureIndex
// must stay in sync with these.
const (
	fieldFileName  = "file_name"
	fieldPage      = "page"
	fieldText      = "text"
	fieldEmbedding = "embedding"
	fieldTables    = "tables"
	fieldFigures   = "figures"
)

type tableDTO struct {
	Num  int        `json:"num"`
	Data string     `json:"data"`
	BBox [4]float64 `json:"bbox"`
}

type figureDTO struct {
	Num     int        `json:"num"`
	Caption string     `json:"caption"`
	BBox    [4]float64 `json:"bbox"`
}

type metaDTO struct {
	FileName   string   `json:"file_name"`
	UploadedAt int64    `json:"uploaded_at"`
	FileType   string   `json:"file_type"`
	PageCount  int      `json:"page_count"`
	Tags       []string `json:"tags,omitempty"`
	Folder     string   `json:"folder,omitempty"`
}

func encodeMeta(meta *domain.DocumentMeta) ([]byte, error) {
	return json.Marshal(metaDTO{
		FileName:   meta.FileName,
		UploadedAt: meta.UploadedAt,
		FileType:   meta.FileType,
		PageCount:  meta.PageCount,
		Tags:       meta.Tags,
		Folder:     meta.Folder,
	})
}

func decodeMeta(data []byte) (domain.DocumentMeta, error) {
	var dto metaDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return domain.DocumentMeta{}, fmt.Errorf("decode document meta: %w", err)
	}
	return domain.DocumentMeta{
		FileName:   dto.FileName,
		UploadedAt: dto.UploadedAt,
		FileType:   dto.FileType,
		PageCount:  dto.PageCount,
		Tags:       dto.Tags,
		Folder:     dto.Folder,
	}, nil
}

func chunkToFields(c *domain.Chunk) (map[string]string, error) {
	fields := map[string]string{
		fieldFileName:  c.FileName,
		fieldPage:      strconv.Itoa(c.Page),
		fieldText:      c.Text,
		fieldEmbedding: string(embeddingToBytes(c.Embedding)),
	}

	if len(c.Tables) > 0 {
		dtos := make([]tableDTO, len(c.Tables))
		for i, tb := range c.Tables {
			dtos[i] = tableDTO{Num: tb.Num, Data: tb.Data, BBox: tb.BBox}
		}
		data, err := json.Marshal(dtos)
		if err != nil {
			return nil, fmt.Errorf("encode tables: %w", err)
		}
		fields[fieldTables] = string(data)
	}

	if len(c.Figures) > 0 {
		dtos := make([]figureDTO, len(c.Figures))
		for i, fg := range c.Figures {
			dtos[i] = figureDTO{Num: fg.Num, Caption: fg.Caption, BBox: fg.BBox}
		}
		data, err := json.Marshal(dtos)
		if err != nil {
			return nil, fmt.Errorf("encode figures: %w", err)
		}
		fields[fieldFigures] = string(data)
	}

	return fields, nil
}

func chunkFromFields(fields map[string]string) (domain.Chunk, error) {
	page, err := strconv.Atoi(fields[fieldPage])
	if err != nil {
		return domain.Chunk{}, fmt.Errorf("parse chunk page %q: %w", fields[fieldPage], err)
	}

	emb, err := bytesToEmbedding([]byte(fields[fieldEmbedding]))
	if err != nil {
		return domain.Chunk{}, fmt.Errorf("parse chunk embedding: %w", err)
	}

	c := domain.Chunk{
		FileName:  fields[fieldFileName],
		Page:      page,
		Text:      fields[fieldText],
		Embedding: emb,
	}

	if raw, ok := fields[fieldTables]; ok && raw != "" {
		var dtos []tableDTO
		if err := json.Unmarshal([]byte(raw), &dtos); err != nil {
			return domain.Chunk{}, fmt.Errorf("decode tables: %w", err)
		}
		c.Tables = make([]domain.Table, len(dtos))
		for i, dto := range dtos {
			c.Tables[i] = domain.Table{Num: dto.Num, Data: dto.Data, BBox: dto.BBox}
		}
	}

	if raw, ok := fields[fieldFigures]; ok && raw != "" {
		var dtos []figureDTO
		if err := json.Unmarshal([]byte(raw), &dtos); err != nil {
			return domain.Chunk{}, fmt.Errorf("decode figures: %w", err)
		}
		c.Figures = make([]domain.Figure, len(dtos))
		for i, dto := range dtos {
			c.Figures[i] = domain.Figure{Num: dto.Num, Caption: dto.Caption, BBox: dto.BBox}
		}
	}

	return c, nil
}

// embeddingToBytes encodes a vector as little-endian FLOAT32, the layout
// FT.SEARCH expects for VECTOR fields.
func embeddingToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToEmbedding(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
