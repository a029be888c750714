package photos

// Photo is one uploaded image with its three stored renditions. The JSON
// field names are the persisted shape of the listing's photos column.
type Photo struct {
	Filename    string `json:"filename"`
	DesktopURL  string `json:"desktopUrl"`
	MobileURL   string `json:"mobileUrl"`
	OriginalURL string `json:"originalUrl"`
}

// UploadFile is a single uploaded image buffer prior to processing.
type UploadFile struct {
	Buffer       []byte
	OriginalName string
	ContentType  string
}
