package llm

// IdentifierPrompt asks for the transaction identifier printed on a receipt image.
const IdentifierPrompt = `Analyze this image, which is a payment receipt or transaction screenshot.
Find the transaction identifier. It may be labeled "Transaction ID", "Invoice No.", "Reference No.",
"Transaction Reference", "VAT Receipt No" or similar.

Respond with exactly one line in this format:
Transaction ID: <identifier>

If no identifier is visible respond with:
Transaction ID: Not Found

Example output:
Transaction ID: FT25188TN19J`

// CBEPagePrompt asks for the six labeled fields of a CBE receipt page.
const CBEPagePrompt = `Analyze this image, which is a page from a Commercial Bank of Ethiopia (CBE) transaction receipt PDF.
Extract the following transaction details. Provide each detail on a new line, labeled clearly.

Fields to extract:
- Transaction ID (VAT Receipt No or Reference No.):
- Payer Name:
- Receiver Name (Credited Party name):
- Transferred Amount:
- Payment Date & Time:
- Transaction Status:

Example output format:
Transaction ID: FT25188TN19J
Payer Name: EHITEMUSIE NEBIYU MENGISTIE
Receiver Name: ABDULSHEKUR SULTAN AHIMED
Transferred Amount: 100.00 ETB
Payment Date & Time: 06/07/2025, 10:08:00 AM
Transaction Status: Completed`
