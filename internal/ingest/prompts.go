package ingest

// SystemInstruction is the fixed clinical-nutritionist persona sent with
// every analysis request, including the strict-JSON output directive.
const SystemInstruction = `
你是一位专业的临床营养师。
请分析上传的食物图片，输出简短的 JSON 格式（严禁使用Markdown代码块），包含以下字段：
1. food_name: 食物名称 (String)
2. calories: 预估总热量(数字，单位kcal)
3. risk_check: 针对用户健康状况的风险评估（String, 重点评估是否过油、过酸、辛辣、难消化）。
4. advice: 简短的饮食建议（String, 针对增重和护胃）。
回答要非常简洁。
`

// DefaultUserProfile is the editable health-profile text shipped as the
// default before the user customizes it in settings.
const DefaultUserProfile = `用户是一位28岁男性，身高173cm，体重57.5kg（偏瘦，需增重），患有【轻微肺气肿】和【巴雷特食管】（Barrett's Esophagus）。`

// userInstruction embeds the health profile into the per-request user text.
func userInstruction(profile string) string {
	return "【当前用户信息】：\n" + profile + "\n\n请分析这张图片。"
}
