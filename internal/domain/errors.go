package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrTemplateNotFound    = errors.New("template not found")
	ErrTemplateInvalid     = errors.New("template is not a valid document archive")
	ErrInvalidTemplateName = errors.New("invalid template name")
	ErrExtractionFailed    = errors.New("bill data extraction failed")
	ErrInvalidBillData     = errors.New("bill data does not match expected format")
)
