package extraction

// Prompt asks the model for the invoice JSON shape consumed by Parse.
const Prompt = `Analyze this invoice document and extract the following information as strict JSON:
- invoice_number (string)
- store_name (string)
- invoice_date (string in YYYY-MM-DD format)
- total_amount (number)
- tax_amount (number)
- discount_amount (number, default 0)
- final_price (number, the amount payable after discounts, if printed)
- line_items (array of objects with: product_id, description, product_name, quantity, unit_price, discount, net_price, amount)
- promotion_mechanism (string, any promo code or promotion text printed on the invoice)
- original_text (string, the raw text you read from the document)

If a field is missing, use null or 0.
Return ONLY valid JSON.`
