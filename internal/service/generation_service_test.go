package service_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"billdoc/internal/docgen"
	"billdoc/internal/domain"
	"billdoc/internal/odt"
	"billdoc/internal/port"
	"billdoc/internal/service"
	"billdoc/internal/templates"
	"billdoc/mocks"
)

type generationDeps struct {
	templates *mocks.MockTemplateSource
	storage   *mocks.MockObjectStorage
	repo      *mocks.MockGenerationRepo
	email     *mocks.MockEmailSender
	bills     *mocks.MockBillService
}

func newGenerationService() (service.GenerationService, generationDeps) {
	deps := generationDeps{
		templates: new(mocks.MockTemplateSource),
		storage:   new(mocks.MockObjectStorage),
		repo:      new(mocks.MockGenerationRepo),
		email:     new(mocks.MockEmailSender),
		bills:     new(mocks.MockBillService),
	}
	tplCfg := testTemplateConfig()
	outCfg := testOutputConfig()
	svc := service.NewGenerationService(deps.templates, deps.storage, deps.repo, deps.email, deps.bills,
		&tplCfg, &outCfg, testMetrics())
	return svc, deps
}

func TestGenerationService_Render_UsesDefaultTemplate(t *testing.T) {
	svc, deps := newGenerationService()
	deps.templates.On("Load", mock.Anything, "notice.odt").Return(noticeTemplate(t), nil)

	res, err := svc.Render(context.Background(), sampleBill(), "")

	require.NoError(t, err)
	assert.Equal(t, "notice_2025-06.odt", res.FileName)
	assert.Equal(t, "notice.odt", res.TemplateName)
	text, err := odt.PrimaryText(res.Document)
	require.NoError(t, err)
	assert.Contains(t, text, "삼십삼만육천구백원")
	deps.templates.AssertExpectations(t)
}

func TestGenerationService_Render_TemplateNotFound(t *testing.T) {
	svc, deps := newGenerationService()
	deps.templates.On("Load", mock.Anything, "missing.odt").Return(nil, domain.ErrTemplateNotFound)

	_, err := svc.Render(context.Background(), sampleBill(), "missing.odt")

	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestGenerationService_Generate_Success(t *testing.T) {
	svc, deps := newGenerationService()

	deps.templates.On("Load", mock.Anything, "notice.odt").Return(noticeTemplate(t), nil)
	deps.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "out-bucket" &&
			strings.HasPrefix(in.Key, "generations/") &&
			strings.HasSuffix(in.Key, "/notice_2025-06.odt") &&
			in.ContentType == odt.MimeType
	})).Return(&port.UploadOutput{Location: "s3://out-bucket/key"}, nil)
	deps.repo.On("Create", mock.Anything, mock.MatchedBy(func(g *domain.Generation) bool {
		return g.Status == domain.GenerationStatusSucceeded && g.ChargedAmount.Equal(decimal.NewFromInt(336900))
	})).Return(nil)
	deps.storage.On("GetPresignedURL", mock.Anything, "out-bucket", mock.AnythingOfType("string"), int64(900)).
		Return("https://example.com/signed", nil)
	deps.email.On("SendGenerationNotice", mock.Anything, "ops@example.com", port.GenerationNotice{
		ServicePeriod: "2025. 6. 23. ~ 2025. 7. 22.",
		ChargedAmount: "336,900",
		AmountInWords: "삼십삼만육천구백원",
		DownloadURL:   "https://example.com/signed",
	}).Return(nil)

	res, err := svc.Generate(context.Background(), service.GenerateInput{
		Data:   sampleBill(),
		Notify: []string{"ops@example.com"},
	})

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/signed", res.DownloadURL)
	assert.Equal(t, "notice.odt", res.Generation.TemplateName)
	assert.Equal(t, "삼십삼만육천구백원", res.Generation.AmountInWords)
	assert.Equal(t, "6,738", res.Values[docgen.TokenUnitPrice])
	assert.Empty(t, res.Warnings)

	deps.storage.AssertExpectations(t)
	deps.repo.AssertExpectations(t)
	deps.email.AssertExpectations(t)
}

func TestGenerationService_Generate_EmailFailureDoesNotFail(t *testing.T) {
	svc, deps := newGenerationService()

	deps.templates.On("Load", mock.Anything, "notice.odt").Return(noticeTemplate(t), nil)
	deps.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	deps.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	deps.storage.On("GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("u", nil)
	deps.email.On("SendGenerationNotice", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("ses down"))

	res, err := svc.Generate(context.Background(), service.GenerateInput{
		Data:   sampleBill(),
		Notify: []string{"a@example.com", "b@example.com"},
	})

	require.NoError(t, err)
	assert.NotNil(t, res.Generation)
	deps.email.AssertNumberOfCalls(t, "SendGenerationNotice", 2)
}

func TestGenerationService_Generate_BadPeriodWarns(t *testing.T) {
	svc, deps := newGenerationService()
	data := sampleBill()
	data.ServicePeriod = strPtr("sometime")

	deps.templates.On("Load", mock.Anything, "notice.odt").Return(noticeTemplate(t), nil)
	deps.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return strings.HasSuffix(in.Key, "/notice.odt")
	})).Return(&port.UploadOutput{}, nil)
	deps.repo.On("Create", mock.Anything, mock.MatchedBy(func(g *domain.Generation) bool {
		return g.Warnings != ""
	})).Return(nil)
	deps.storage.On("GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("u", nil)

	res, err := svc.Generate(context.Background(), service.GenerateInput{Data: data})

	require.NoError(t, err)
	assert.NotEmpty(t, res.Warnings)
	assert.Equal(t, "", res.Values[docgen.TokenServicePeriod])
	deps.email.AssertNotCalled(t, "SendGenerationNotice", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerationService_Generate_StructuralFailureIsRecorded(t *testing.T) {
	svc, deps := newGenerationService()

	deps.templates.On("Load", mock.Anything, "broken.odt").Return([]byte("not a zip"), nil)
	deps.repo.On("Create", mock.Anything, mock.MatchedBy(func(g *domain.Generation) bool {
		return g.Status == domain.GenerationStatusFailed && g.ErrorMessage != "" && g.OutputKey == ""
	})).Return(nil)

	_, err := svc.Generate(context.Background(), service.GenerateInput{
		Data:         sampleBill(),
		TemplateName: "broken.odt",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, odt.ErrStructural)
	var genErr *docgen.GenerationError
	assert.ErrorAs(t, err, &genErr)
	deps.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	deps.repo.AssertExpectations(t)
}

// newFileBackedService wires the real file template source over dir so that
// archive validation on load is exercised.
func newFileBackedService(dir string) (service.GenerationService, generationDeps) {
	deps := generationDeps{
		storage: new(mocks.MockObjectStorage),
		repo:    new(mocks.MockGenerationRepo),
		email:   new(mocks.MockEmailSender),
		bills:   new(mocks.MockBillService),
	}
	tplCfg := testTemplateConfig()
	outCfg := testOutputConfig()
	svc := service.NewGenerationService(templates.NewFileSource(dir), deps.storage, deps.repo, deps.email, deps.bills,
		&tplCfg, &outCfg, testMetrics())
	return svc, deps
}

func TestGenerationService_Generate_InvalidTemplateOnDiskIsRecorded(t *testing.T) {
	var noContent bytes.Buffer
	zw := zip.NewWriter(&noContent)
	w, err := zw.Create("styles.xml")
	require.NoError(t, err)
	_, _ = w.Write([]byte("<styles/>"))
	require.NoError(t, zw.Close())

	tests := map[string][]byte{
		"corrupt.odt":    []byte("not a zip"),
		"no-content.odt": noContent.Bytes(),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o600))
			svc, deps := newFileBackedService(dir)

			deps.repo.On("Create", mock.Anything, mock.MatchedBy(func(g *domain.Generation) bool {
				return g.Status == domain.GenerationStatusFailed && g.TemplateName == name &&
					g.ErrorMessage != "" && g.OutputKey == ""
			})).Return(nil)

			_, err := svc.Generate(context.Background(), service.GenerateInput{
				Data:         sampleBill(),
				TemplateName: name,
			})

			assert.ErrorIs(t, err, domain.ErrTemplateInvalid)
			assert.ErrorIs(t, err, odt.ErrStructural)
			deps.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
			deps.repo.AssertExpectations(t)
		})
	}
}

func TestGenerationService_Generate_MissingTemplateIsNotRecorded(t *testing.T) {
	svc, deps := newFileBackedService(t.TempDir())

	_, err := svc.Generate(context.Background(), service.GenerateInput{
		Data:         sampleBill(),
		TemplateName: "absent.odt",
	})

	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	deps.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGenerationService_Generate_UploadFailure(t *testing.T) {
	svc, deps := newGenerationService()

	deps.templates.On("Load", mock.Anything, "notice.odt").Return(noticeTemplate(t), nil)
	deps.storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("network"))

	_, err := svc.Generate(context.Background(), service.GenerateInput{Data: sampleBill()})

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	deps.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGenerationService_Generate_RepoFailureRemovesUpload(t *testing.T) {
	svc, deps := newGenerationService()

	deps.templates.On("Load", mock.Anything, "notice.odt").Return(noticeTemplate(t), nil)
	deps.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	deps.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))
	deps.storage.On("Delete", mock.Anything, "out-bucket", mock.AnythingOfType("string")).Return(nil)

	_, err := svc.Generate(context.Background(), service.GenerateInput{Data: sampleBill()})

	require.Error(t, err)
	deps.storage.AssertCalled(t, "Delete", mock.Anything, "out-bucket", mock.AnythingOfType("string"))
}

func TestGenerationService_ExtractAndGenerate(t *testing.T) {
	svc, deps := newGenerationService()
	in := service.BillUploadInput{FileName: "bill.pdf", Size: 4, Body: bytes.NewReader([]byte("%PDF"))}

	deps.bills.On("Extract", mock.Anything, in).Return(&service.BillExtraction{
		Data:      sampleBill(),
		ModelUsed: "gemini-2.0-flash",
		FileName:  "bill.pdf",
	}, nil)
	deps.templates.On("Load", mock.Anything, "notice.odt").Return(noticeTemplate(t), nil)
	deps.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	deps.repo.On("Create", mock.Anything, mock.MatchedBy(func(g *domain.Generation) bool {
		return g.ExtractionModel == "gemini-2.0-flash" && g.SourceFileName == "bill.pdf"
	})).Return(nil)
	deps.storage.On("GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("u", nil)

	res, err := svc.ExtractAndGenerate(context.Background(), in, "", nil)

	require.NoError(t, err)
	assert.Equal(t, "336900", res.Generation.ChargedAmount.String())
	deps.repo.AssertExpectations(t)
}

func TestGenerationService_ExtractAndGenerate_RejectsBadTemplateFirst(t *testing.T) {
	svc, deps := newGenerationService()

	_, err := svc.ExtractAndGenerate(context.Background(), service.BillUploadInput{}, "../etc/passwd", nil)

	assert.ErrorIs(t, err, domain.ErrInvalidTemplateName)
	deps.bills.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestGenerationService_ExtractAndGenerate_ExtractionError(t *testing.T) {
	svc, deps := newGenerationService()
	deps.bills.On("Extract", mock.Anything, mock.Anything).Return(nil, domain.ErrUnsupportedFileType)

	_, err := svc.ExtractAndGenerate(context.Background(), service.BillUploadInput{}, "", nil)

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	deps.templates.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
}

func TestGenerationService_GetDownloadURL(t *testing.T) {
	svc, deps := newGenerationService()
	okID, failedID := uuid.New(), uuid.New()

	deps.repo.On("GetByID", mock.Anything, okID).Return(&domain.Generation{
		ID: okID, Status: domain.GenerationStatusSucceeded, OutputBucket: "out-bucket", OutputKey: "k.odt",
	}, nil)
	deps.repo.On("GetByID", mock.Anything, failedID).Return(&domain.Generation{
		ID: failedID, Status: domain.GenerationStatusFailed,
	}, nil)
	deps.storage.On("GetPresignedURL", mock.Anything, "out-bucket", "k.odt", int64(900)).Return("https://signed", nil)

	url, err := svc.GetDownloadURL(context.Background(), okID)
	require.NoError(t, err)
	assert.Equal(t, "https://signed", url)

	_, err = svc.GetDownloadURL(context.Background(), failedID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGenerationService_Export(t *testing.T) {
	svc, deps := newGenerationService()
	deps.repo.On("ListAll", mock.Anything).Return([]domain.Generation{{
		ID:            uuid.New(),
		TemplateName:  "notice.odt",
		ServicePeriod: "2025.06.23 ~ 2025.07.22",
		ChargedAmount: decimal.NewFromInt(336900),
		Status:        domain.GenerationStatusSucceeded,
	}}, nil)

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, svc.Export(context.Background(), &buf, service.ExportFormatCSV))
		out := buf.String()
		assert.True(t, strings.HasPrefix(out, "\xEF\xBB\xBF"))
		assert.Contains(t, out, "notice.odt")
		assert.Equal(t, 2, strings.Count(strings.TrimSpace(out), "\n")+1)
	})

	t.Run("xlsx", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, svc.Export(context.Background(), &buf, service.ExportFormatXLSX))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, svc.Export(context.Background(), &bytes.Buffer{}, "pdf"))
	})
}

func TestOutputFileName(t *testing.T) {
	assert.Equal(t, "notice_2025-12.odt", service.OutputFileName("notice.odt", "2025.12.1~2025.12.31"))
	assert.Equal(t, "notice.odt", service.OutputFileName("notice.odt", ""))
}
