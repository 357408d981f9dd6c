package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{} // No timeout: ask can take a while on cold models
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	color.Cyan("🍷 Starting Wine Retrieval API Walkthrough\n")

	// 1. Browse the corpus
	color.Yellow("\n[WINE] 1. List Wines (page 1)")
	resp, body, err := sendRequest("GET", "/wine/v1?page=1&size=3", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var listResp map[string]interface{}
	json.Unmarshal(body, &listResp)

	// Grab an id for the show step
	var wineID float64
	if data, ok := listResp["data"].(map[string]interface{}); ok {
		fmt.Printf("Total reviews: %v\n", data["total"])
		if items, ok := data["items"].([]interface{}); ok && len(items) > 0 {
			if first, ok := items[0].(map[string]interface{}); ok {
				if id, ok := first["id"].(float64); ok {
					wineID = id
				}
				fmt.Printf("First: %v\n", first["title"])
			}
		}
	}

	// 2. Show one review
	if wineID > 0 {
		color.Yellow("\n[WINE] 2. Show Wine %d", int64(wineID))
		resp, body, err = sendRequest("GET", fmt.Sprintf("/wine/v1/%d", int64(wineID)), nil)
		if err != nil {
			color.Red("Failed: %v", err)
		} else {
			color.Green("Status: %s", resp.Status)
			var showResp map[string]interface{}
			json.Unmarshal(body, &showResp)
			prettyPrint(showResp)
		}
	} else {
		color.Red("\n[SKIP] Show skipped (empty corpus? run cmd/seed first)")
	}

	// 3. Lexical search over the tsvector index
	color.Yellow("\n[SEARCH] 3. Lexical: 'blackberry firm tannins'")
	resp, body, err = sendRequest("GET", "/wine/v1/search?q=blackberry+firm+tannins&size=3", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	printSearchSummary(body)

	// 4. Semantic search over pgvector
	color.Yellow("\n[SEARCH] 4. Semantic: 'crisp mineral white for oysters'")
	resp, body, err = sendRequest("GET", "/wine/v1/semantic-search?q=crisp+mineral+white+for+oysters&size=3", nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		printSearchSummary(body)
	}

	// 5. Grounded question answering
	color.Yellow("\n[ASK] 5. Ask: 'What pairs well with spicy food?'")
	askReq := map[string]interface{}{
		"question": "What wine pairs well with spicy food?",
		"top_k":    5,
	}
	resp, body, err = sendRequest("POST", "/ask/v1", askReq)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		var askResp map[string]interface{}
		json.Unmarshal(body, &askResp)
		// Concise printing to avoid a huge answer dump
		if data, ok := askResp["data"].(map[string]interface{}); ok {
			fmt.Printf("Answer: %v\n", data["answer"])
			if citations, ok := data["citations"].([]interface{}); ok {
				fmt.Printf("Citations: %d\n", len(citations))
			}
			fmt.Printf("Confidence: %v\n", data["confidence"])
		} else {
			prettyPrint(askResp)
		}
	}

	// 6. Trigger an index rebuild (409 is fine if one is already running)
	color.Yellow("\n[INDEX] 6. Trigger Rebuild")
	resp, body, err = sendRequest("POST", "/index/v1/rebuild", map[string]interface{}{})
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		var rebuildResp map[string]interface{}
		json.Unmarshal(body, &rebuildResp)
		prettyPrint(rebuildResp)
	}

	// 7. Poll ingestion status
	color.Yellow("\n[INDEX] 7. Index Status")
	resp, body, err = sendRequest("GET", "/index/v1/status", nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		var statusResp map[string]interface{}
		json.Unmarshal(body, &statusResp)
		prettyPrint(statusResp)
	}

	color.Cyan("\n✅ Walkthrough Complete")
}

func printSearchSummary(body []byte) {
	var searchResp map[string]interface{}
	json.Unmarshal(body, &searchResp)
	data, ok := searchResp["data"].(map[string]interface{})
	if !ok {
		prettyPrint(searchResp)
		return
	}
	fmt.Printf("Total: %v\n", data["total"])
	items, _ := data["items"].([]interface{})
	for _, it := range items {
		item, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		fmt.Printf("  [%v] %.4v  %v\n", item["wine_id"], item["score"], item["title"])
	}
}
