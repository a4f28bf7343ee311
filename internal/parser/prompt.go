package parser

// BuildWaterBillPrompt returns the extraction prompt for scanned water bills with
// handwritten per-lab usage notes.
func BuildWaterBillPrompt() string {
	return `You are a document data extraction assistant. Analyze the provided water bill image and extract the following fields into a single JSON object:

1. "due_date_amount": the amount payable by the due date (number only, no currency or separators)
2. "water_usage_m3": the metered water usage in m³ (number only)
3. "lab1_tons": usage of Lab 1 from the handwritten memo, in tons (number only, null if absent)
4. "lab2_tons": usage of Lab 2 from the handwritten memo, in tons (number only, null if absent)
5. "service_period": the service period exactly as "YYYY.MM.DD ~ YYYY.MM.DD"

If a field cannot be found, set its value to null.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation. Just the raw JSON object, for example:
{"due_date_amount": 6738000, "water_usage_m3": 1000, "lab1_tons": 30, "lab2_tons": 20, "service_period": "2025.06.23 ~ 2025.07.22"}
`
}
