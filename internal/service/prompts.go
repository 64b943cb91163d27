package service

import "fmt"

func answerPrompt(ragContext, question string) string {
	return fmt.Sprintf(`You are a helpful assistant specialized in answering based only on the provided context.
If the answer is not found in the context, respond strictly with: "%s"

Think step-by-step:
1. Understand the question.
2. Locate the relevant details in the context.
3. Generate a concise and factual response.

Context:
"""
%s
"""

Question: %s

Answer:`, RefusalAnswer, ragContext, question)
}

func judgePrompt(ragContext, question string) string {
	return fmt.Sprintf("Is the following context sufficient to answer this question: '%s'\nContext:\n%s\nAnswer only YES or NO.", question, ragContext)
}

func rephrasePrompt(question string) string {
	return fmt.Sprintf("Rewrite the following question to retrieve more relevant chunks: %s", question)
}

func profilePrompt(ragContext, question string) string {
	return fmt.Sprintf(`You are a helpful assistant specialized in extracting doctor profiles based only on the provided context.
If the answer is not found in the context, respond strictly with: '%s'

Return your answer in this structured JSON format:
{
  "Name": "",
  "Speciality": "",
  "Phone": "",
  "Address": "",
  "State": "",
  "City": "",
  "Education": "",
  "Experience": "",
  "Hospital": "",
  "Website": ""
}

Context:
%s

Question: %s

Answer:`, RefusalAnswer, ragContext, question)
}
