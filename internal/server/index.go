package server

import (
	"html/template"
	"net/http"
)

// indexHandler serves the single-page upload/analysis/chat UI
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Version       string
		AnalysisModes []analysisMode
	}{
		Version:       s.Version,
		AnalysisModes: analysisModes,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.Logger.Warn("Failed to render index page", "error", err)
	}
}

type analysisMode struct {
	Value string
	Label string
}

var analysisModes = []analysisMode{
	{Value: "quick_overview", Label: "Quick Overview"},
	{Value: "issues", Label: "Issues Analysis"},
	{Value: "enhancement", Label: "Enhancement Tips"},
	{Value: "job_match", Label: "Job Matching"},
	{Value: "complete", Label: "Complete Analysis"},
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>ResumeLens</title>
<style>
body { font-family: sans-serif; max-width: 860px; margin: 2rem auto; padding: 0 1rem; color: #222; }
h1 { font-size: 1.6rem; }
section { border: 1px solid #ddd; border-radius: 6px; padding: 1rem; margin-bottom: 1rem; }
textarea { width: 100%; min-height: 5rem; }
button { margin: 0.2rem 0.3rem 0.2rem 0; padding: 0.4rem 0.8rem; cursor: pointer; }
pre { white-space: pre-wrap; background: #f7f7f7; padding: 0.8rem; border-radius: 4px; }
.metrics span { display: inline-block; margin-right: 1.2rem; font-weight: bold; }
.chat-turn { margin: 0.4rem 0; }
.chat-turn.user { color: #1a5276; }
.hidden { display: none; }
</style>
</head>
<body>
<h1>ResumeLens <small>v{{.Version}}</small></h1>

<section>
<h2>1. Upload resume</h2>
<input type="file" id="resume-file" accept=".pdf">
<button onclick="uploadResume()">Upload</button>
<div id="upload-summary" class="hidden">
  <div class="metrics">
    <span id="m-pages"></span><span id="m-words"></span><span id="m-chars"></span><span id="m-method"></span>
  </div>
  <pre id="upload-fields"></pre>
</div>
</section>

<section>
<h2>2. Job description (optional)</h2>
<textarea id="job-description" placeholder="Paste the job description here for job matching..."></textarea>
</section>

<section>
<h2>3. Analyze</h2>
{{range .AnalysisModes}}<button onclick="analyze('{{.Value}}')">{{.Label}}</button>
{{end}}<pre id="analysis-output" class="hidden"></pre>
</section>

<section>
<h2>4. Ask a question</h2>
<textarea id="question" placeholder="Ask anything about this resume..."></textarea>
<button onclick="ask()">Ask</button>
<div id="chat-history"></div>
</section>

<section>
<h2>5. Export report</h2>
<button onclick="exportReport()">Download PDF report</button>
</section>

<script>
let sessionId = null;

async function uploadResume() {
  const input = document.getElementById('resume-file');
  if (!input.files.length) { alert('Choose a PDF first'); return; }
  const form = new FormData();
  form.append('resume', input.files[0]);
  const resp = await fetch('/api/upload', { method: 'POST', body: form });
  const body = await resp.json();
  if (!resp.ok) { alert(body.error + (body.message ? ': ' + body.message : '')); return; }
  sessionId = body.sessionId;
  document.getElementById('upload-summary').classList.remove('hidden');
  document.getElementById('m-pages').textContent = 'Pages: ' + body.pageCount;
  document.getElementById('m-words').textContent = 'Words: ' + body.wordCount;
  document.getElementById('m-chars').textContent = 'Characters: ' + body.charCount;
  document.getElementById('m-method').textContent = 'Method: ' + body.method;
  document.getElementById('upload-fields').textContent = JSON.stringify(body.fields, null, 2);
}

async function analyze(type) {
  if (!sessionId) { alert('Upload a resume first'); return; }
  const resp = await fetch('/api/analyze', {
    method: 'POST',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify({
      sessionId: sessionId,
      analysisType: type,
      jobDescription: document.getElementById('job-description').value
    })
  });
  const body = await resp.json();
  if (!resp.ok) { alert(body.error + (body.message ? ': ' + body.message : '')); return; }
  const out = document.getElementById('analysis-output');
  out.classList.remove('hidden');
  out.textContent = (body.manual ? '[manual guidance]\n\n' : '') + body.content;
}

async function ask() {
  if (!sessionId) { alert('Upload a resume first'); return; }
  const question = document.getElementById('question').value.trim();
  if (!question) { return; }
  const resp = await fetch('/api/ask', {
    method: 'POST',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify({ sessionId: sessionId, question: question })
  });
  const body = await resp.json();
  if (!resp.ok) { alert(body.error + (body.message ? ': ' + body.message : '')); return; }
  renderHistory(body.history);
  document.getElementById('question').value = '';
}

function renderHistory(history) {
  const container = document.getElementById('chat-history');
  container.innerHTML = '';
  (history || []).slice(-20).forEach(turn => {
    const div = document.createElement('div');
    div.className = 'chat-turn ' + turn.role;
    div.textContent = (turn.role === 'user' ? 'You: ' : 'Assistant: ') + turn.content;
    container.appendChild(div);
  });
}

async function exportReport() {
  if (!sessionId) { alert('Upload a resume first'); return; }
  const resp = await fetch('/api/export', {
    method: 'POST',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify({ sessionId: sessionId })
  });
  if (!resp.ok) { const body = await resp.json(); alert(body.error); return; }
  const blob = await resp.blob();
  const url = URL.createObjectURL(blob);
  const a = document.createElement('a');
  a.href = url;
  a.download = 'resume_analysis_report.pdf';
  a.click();
  URL.revokeObjectURL(url);
}
</script>
</body>
</html>
`))
