package utils

// APIResponse adalah format standar JSON yang akan diterima Frontend.
// Contoh sukses : { "status": true,  "message": "RPS diajukan", "data": { ... } }
// Contoh gagal  : { "status": false, "message": "RPS tidak ditemukan", "code": "not_found", "errors": ... }
type APIResponse struct {
	Status       bool        `json:"status"`
	Message      string      `json:"message"`
	Code         string      `json:"code,omitempty"`         // kategori error (validation_error, state_error, ...)
	CurrentState string      `json:"currentState,omitempty"` // hanya untuk state_error
	Data         interface{} `json:"data,omitempty"`
	Errors       interface{} `json:"errors,omitempty"`
}

// BuildResponseSuccess digunakan saat request berhasil (HTTP 200/201).
func BuildResponseSuccess(message string, data interface{}) APIResponse {
	return APIResponse{
		Status:  true,
		Message: message,
		Data:    data,
	}
}

// BuildResponsePartial: sukses, tetapi sebagian item gagal (misal dosen tidak valid).
func BuildResponsePartial(message string, data interface{}, errs interface{}) APIResponse {
	return APIResponse{
		Status:  true,
		Message: message,
		Data:    data,
		Errors:  errs,
	}
}

// BuildResponseFailed digunakan saat terjadi error (HTTP 4xx/5xx).
// - code: kategori error yang bisa dibaca mesin.
// - err : detail (string, daftar field, atau data konflik).
func BuildResponseFailed(message, code string, err interface{}) APIResponse {
	return APIResponse{
		Status:  false,
		Message: message,
		Code:    code,
		Errors:  err,
	}
}
