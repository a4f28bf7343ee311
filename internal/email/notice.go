// Package email renders generation notices shared by the sender implementations.
package email

import (
	"fmt"
	"html"

	"billdoc/internal/port"
)

// NoticeSubject returns the subject line for a generation notice.
func NoticeSubject(n port.GenerationNotice) string {
	if n.ServicePeriod == "" {
		return "[수도요금] 부과 안내문이 생성되었습니다"
	}
	return fmt.Sprintf("[수도요금] %s 부과 안내문이 생성되었습니다", n.ServicePeriod)
}

// NoticeText returns the plain-text body of a generation notice.
func NoticeText(n port.GenerationNotice) string {
	return fmt.Sprintf("수도요금 부과 안내문이 생성되었습니다.\n\n사용기간: %s\n부과액: %s원 (%s)\n\n내려받기:\n%s\n",
		n.ServicePeriod, n.ChargedAmount, n.AmountInWords, n.DownloadURL)
}

// NoticeHTML returns the HTML body of a generation notice.
func NoticeHTML(n port.GenerationNotice) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">수도요금 부과 안내문</h2>
  <table style="border-collapse: collapse;">
    <tr><td style="padding: 4px 12px 4px 0; color: #666;">사용기간</td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0; color: #666;">부과액</td><td>%s원 (%s)</td></tr>
  </table>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">안내문 내려받기</a>
  </p>
  <p style="color: #999; font-size: 12px;">내려받기 링크는 일정 시간 후 만료됩니다.</p>
</body>
</html>`,
		html.EscapeString(n.ServicePeriod),
		html.EscapeString(n.ChargedAmount),
		html.EscapeString(n.AmountInWords),
		html.EscapeString(n.DownloadURL),
	)
}
