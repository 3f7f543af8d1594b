package dto

type CandidateResponse struct {
	UserID int64    `json:"user_id"`
	Name   string   `json:"name"`
	Age    int      `json:"age"`
	Gender string   `json:"gender"`
	Bio    string   `json:"bio"`
	Photos []string `json:"photos"`
}

type DiscoverResponse struct {
	Items []CandidateResponse `json:"items"`
}
