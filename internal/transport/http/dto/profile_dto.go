package dto

type ProfileResponse struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Age       int      `json:"age"`
	Gender    string   `json:"gender"`
	Bio       string   `json:"bio"`
	Photos    []string `json:"photos"`
	PhotoURLs []string `json:"photo_urls"`
}

type ProfileUpdateRequest struct {
	Name   string   `json:"name"`
	Bio    string   `json:"bio"`
	Photos []string `json:"photos"`
}

type PhotoUploadResponse struct {
	Key    string   `json:"key"`
	URL    string   `json:"url"`
	Photos []string `json:"photos"`
}

type PhotoRemoveRequest struct {
	Key string `json:"key"`
}

type PhotoListResponse struct {
	Photos []string `json:"photos"`
}
