package recommendations

// RecommendationResponse is the wire form of a record.
type RecommendationResponse struct {
	ID            int64 `json:"id"`
	ProductOrigin int64 `json:"product_origin"`
	ProductTarget int64 `json:"product_target"`
	Relation      int   `json:"relation"`
	Dislike       int64 `json:"dislike"`
	IsDeleted     bool  `json:"is_deleted"`
}

func toResponse(rec Recommendation) RecommendationResponse {
	return RecommendationResponse{
		ID:            rec.ID,
		ProductOrigin: rec.ProductOrigin,
		ProductTarget: rec.ProductTarget,
		Relation:      int(rec.Relation),
		Dislike:       rec.Dislike,
		IsDeleted:     rec.IsDeleted(),
	}
}

func toResponses(recs []Recommendation) []RecommendationResponse {
	out := make([]RecommendationResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toResponse(rec))
	}
	return out
}
