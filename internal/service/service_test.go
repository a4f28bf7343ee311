package service_test

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"billdoc/internal/config"
	"billdoc/internal/docgen"
	"billdoc/internal/domain"
	"billdoc/internal/metrics"
	"billdoc/internal/odt"
)

func testMetrics() *metrics.Metrics {
	return metrics.NewWithRegistry(prometheus.NewRegistry())
}

func testS3Config() config.S3Config {
	return config.S3Config{
		Region:        "ap-northeast-2",
		Bucket:        "test-bucket",
		MaxFileSizeMB: 1,
		PresignExpiry: 3600,
	}
}

func testTemplateConfig() config.TemplateConfig {
	return config.TemplateConfig{
		Source:      config.TemplateSourceFile,
		Dir:         "templates",
		DefaultName: "notice.odt",
	}
}

func testOutputConfig() config.OutputConfig {
	return config.OutputConfig{
		Bucket:        "out-bucket",
		Prefix:        "generations/",
		PresignExpiry: 900,
	}
}

func strPtr(s string) *string { return &s }

func sampleBill() domain.ExtractedBillData {
	return domain.ExtractedBillData{
		DueDateAmount: domain.ParseNumber("6,738,000"),
		WaterUsageM3:  domain.ParseNumber("1000"),
		Lab1Tons:      domain.ParseNumber("30"),
		Lab2Tons:      domain.ParseNumber("20"),
		ServicePeriod: strPtr("2025.06.23 ~ 2025.07.22"),
	}
}

// noticeTemplate builds a minimal .odt whose body lists every placeholder.
func noticeTemplate(t *testing.T) []byte {
	t.Helper()
	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8"?><office:document-content><office:text>`)
	for _, tok := range docgen.Tokens {
		body.WriteString("<text:p>" + tok + "</text:p>")
	}
	body.WriteString(`</office:text></office:document-content>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	require.NoError(t, err)
	_, err = w.Write([]byte(odt.MimeType))
	require.NoError(t, err)
	w, err = zw.Create(odt.PrimaryPart)
	require.NoError(t, err)
	_, err = w.Write([]byte(body.String()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
