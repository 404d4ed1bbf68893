package ollama

const maxTranscriptChars = 4000

// buildOrderPrompt asks the model to pull customer details and purchased
// items out of a spoken grocery order. Misspelling correction and
// duplicate merging are requested here but re-verified downstream; the
// normalizer never trusts the model to have merged anything.
func buildOrderPrompt(transcript string) string {
	snippet := transcript
	if len(snippet) > maxTranscriptChars {
		snippet = snippet[:maxTranscriptChars]
	}

	return `You are a billing assistant for an Indian grocery shop.
Use your knowledge of common Indian grocery items to correct misspelled product names.
Extract the customer name, phone number and address if mentioned, and every purchased item with its quantity.
If the same item is mentioned more than once, combine the mentions into one entry with the total quantity.

Return a strict JSON object with exactly these keys and nothing else, no markdown:
{
  "customer": "Customer Name",
  "items": [
    {"name": "product1", "quantity": "2 kg"},
    {"name": "product2", "quantity": "1"}
  ],
  "phone": "Customer Phone Number",
  "address": "Customer Address"
}

Transcript:
` + snippet
}
