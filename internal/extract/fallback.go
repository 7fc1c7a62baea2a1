package extract

import "review_scraper/internal/domain"

var fallbackRecords = [...]domain.ReviewRecord{
	{Name: "John Doe", Rating: 5, Text: "Great place! The staff were friendly and the service was quick.", Date: "1 month ago"},
	{Name: "Maria Garcia", Rating: 4, Text: "Really enjoyed it. A little crowded at lunchtime but worth the wait.", Date: "2 weeks ago"},
	{Name: "Ahmed Khan", Rating: 5, Text: "Excellent experience from start to finish. Will be back.", Date: "3 days ago"},
	{Name: "Emily Chen", Rating: 3, Text: "Decent overall. Prices are a bit high for what you get.", Date: "2 months ago"},
	{Name: "Lucas Müller", Rating: 4, Text: "Clean, well organised and easy to find. Parking is limited.", Date: "5 months ago"},
	{Name: "Sofia Rossi", Rating: 5, Text: "Absolutely loved it. Highly recommend to anyone in the area.", Date: "a week ago"},
	{Name: "David Smith", Rating: 4, Text: "Good value and helpful staff. Opening hours could be longer.", Date: "3 weeks ago"},
	{Name: "Aiko Tanaka", Rating: 3, Text: "It was fine. Nothing special, nothing bad either.", Date: "4 months ago"},
	{Name: "Olivia Brown", Rating: 5, Text: "One of the best in town. Consistently great every visit.", Date: "6 days ago"},
	{Name: "Noah Wilson", Rating: 4, Text: "Pleasant atmosphere and quick service. Would visit again.", Date: "a year ago"},
}

// Fallback returns the fixed sample set used when a page yields no reviews.
// Every record is marked Synthetic. The slice is a fresh copy.
func Fallback() []domain.ReviewRecord {
	out := make([]domain.ReviewRecord, len(fallbackRecords))
	for i, r := range fallbackRecords {
		r.Synthetic = true
		out[i] = r
	}
	return out
}
