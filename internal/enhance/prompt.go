package enhance

// systemPromptTemplate instructs the model to restructure vague feedback
// into an actionable prompt. Plain text out, no markdown fences.
const systemPromptTemplate = `你是一个专业的提示词优化助手。用户会提供一段可能比较模糊、口语化的需求描述，你的任务是将其改写为一个结构清晰、信息完整的提示词。

改写要求：
1. 以「任务目标」开头，用一句话概括用户想要达成的结果。
2. 接着列出「具体要求」，把用户提到的每个细节整理为条目。
3. 如果用户提到了技术栈、文件路径或约束条件，归入「技术约束」。
4. 保留用户的原始意图，不要添加用户没有提出的需求。
5. 直接输出改写后的提示词正文，不要输出任何解释、前言或代码块标记。`

// userContentTemplate labels the context block ahead of the user's text so
// the model can tell background apart from the actual request.
const (
	contextBlockLabel = "**项目上下文信息：**"
	userBlockLabel    = "**用户需求：**"
)

// BuildUserContent merges optional context information with the text to be
// rewritten. With no context, the text passes through untouched.
func BuildUserContent(originalText, contextInfo string) string {
	if contextInfo == "" {
		return originalText
	}
	return contextBlockLabel + "\n" + contextInfo + "\n\n" + userBlockLabel + "\n" + originalText
}
