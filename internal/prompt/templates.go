package prompt

// Every template forbids blank lines in the reply and asks for line numbers
// behind "Line"/"Dòng" markers, which is what the error line locator matches.

const reviewTemplateEN = `You are an expert {{.Language}} code reviewer. Analyze the code below and answer in EXACTLY this format:
**1. Detected errors:**
- Line X: [specific description of the error]
- Line Y: [specific description of the error]
(If there are no errors, write: 'No logic or syntax errors detected')
**2. Improvements:**
- [Improvement suggestion 1]
- [Improvement suggestion 2]
**3. Optimized code:**
` + "```" + `{{.Fence}}
[the improved code]
` + "```" + `
**RULES:**
- ALWAYS give the LINE NUMBER before every defect, for example 'Line 5: syntax error'
- Do NOT leave blank lines in the response
- The improved code MUST be inside the code block
**Code to analyze (each line is prefixed with its number):**
{{.NumberedCode}}`

const explainTemplateEN = `You are an expert programmer. EXPLAIN the following {{.Language}} code in detail:
**REQUIREMENTS:**
1. Summarize what the code is for
2. Explain each important component
3. Describe the execution flow
4. Give an illustrative example (if possible)
**RULES:**
- Do NOT look for errors
- Do NOT leave blank lines
- Focus only on EXPLAINING
**Code:**
` + "```" + `{{.Fence}}
{{.Code}}
` + "```"

const suggestNamesTemplateEN = `You are a naming convention expert for {{.Language}}. Analyze the code and suggest better names:
**TASKS:**
1. List the current variable and function names, one per line
2. Propose a clearer new name for each
3. Explain why the new name is better
4. State the naming rules for {{.Language}}
**REQUIREMENTS:**
- Do NOT rewrite the code, only suggest names
- For each name give: old name - new name - explanation, in order of appearance
- Do NOT leave blank lines
- Focus on naming conventions
**Code to analyze:**
` + "```" + `{{.Fence}}
{{.Code}}
` + "```"

const reviewTemplateVI = `Bạn là chuyên gia đánh giá mã nguồn {{.Language}}. Hãy phân tích đoạn code dưới đây và trả lời ĐÚNG theo định dạng:
**1. Lỗi phát hiện:**
- Dòng X: [mô tả cụ thể lỗi]
- Dòng Y: [mô tả cụ thể lỗi]
(Nếu không có lỗi, ghi: 'Không phát hiện lỗi logic hoặc cú pháp')
**2. Cải thiện code:**
- [Gợi ý cải thiện 1]
- [Gợi ý cải thiện 2]
**3. Code đã tối ưu:**
` + "```" + `{{.Fence}}
[code sau khi cải thiện]
` + "```" + `
**LƯU Ý:**
- LUÔN ghi SỐ DÒNG trước mỗi lỗi, ví dụ 'Dòng 5: lỗi cú pháp'
- KHÔNG để dòng trống trong câu trả lời
- Code cải thiện PHẢI nằm trong code block
**Code cần phân tích (mỗi dòng có số thứ tự ở đầu):**
{{.NumberedCode}}`

const explainTemplateVI = `Bạn là chuyên gia lập trình. Hãy GIẢI THÍCH chi tiết đoạn mã {{.Language}} sau:
**YÊU CẦU:**
1. Tóm tắt mục đích của code
2. Giải thích các thành phần quan trọng
3. Mô tả luồng thực thi
4. Ví dụ minh họa (nếu có thể)
**LƯU Ý:**
- KHÔNG kiểm tra lỗi
- KHÔNG để dòng trống
- Chỉ tập trung GIẢI THÍCH
**Code:**
` + "```" + `{{.Fence}}
{{.Code}}
` + "```"

const suggestNamesTemplateVI = `Bạn là chuyên gia quy tắc đặt tên cho {{.Language}}. Hãy phân tích code và gợi ý tên tốt hơn:
**NHIỆM VỤ:**
1. Liệt kê tên biến và hàm hiện tại, mỗi tên một dòng
2. Đề xuất tên mới rõ ràng hơn
3. Giải thích vì sao tên mới tốt hơn
4. Quy tắc đặt tên cho {{.Language}}
**YÊU CẦU:**
- KHÔNG sửa code, chỉ gợi ý tên
- Với từng tên: Tên cũ - Tên mới - Giải thích, theo thứ tự xuất hiện
- KHÔNG để dòng trống
- Tập trung vào quy tắc đặt tên
**Code phân tích:**
` + "```" + `{{.Fence}}
{{.Code}}
` + "```"
