package esplora

type txStatus struct {
	Confirmed   bool   `json:"confirmed"`
	BlockHeight int64  `json:"block_height,omitempty"`
	BlockHash   string `json:"block_hash,omitempty"`
	BlockTime   int64  `json:"block_time,omitempty"`
}

type txInfo struct {
	TxID   string   `json:"txid"`
	Vin    []txVin  `json:"vin"`
	Vout   []txVout `json:"vout"`
	Status txStatus `json:"status"`
}

type txVin struct {
	TxID       string  `json:"txid"`
	Vout       uint32  `json:"vout"`
	PrevOut    *txVout `json:"prevout,omitempty"`
	IsCoinbase bool    `json:"is_coinbase"`
}

type txVout struct {
	ScriptPubKey     string `json:"scriptpubkey"`
	ScriptPubKeyAddr string `json:"scriptpubkey_address,omitempty"`
	Value            int64  `json:"value"`
}
