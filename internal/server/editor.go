package server

import (
	"html/template"
	"net/http"
)

// handleEditorPage serves the single-page editor. The page drives the
// JSON API and renders the social-media graphic client-side; on publish
// it captures the graphic at 2x scale over a white background and sends
// it along as a data URL.
func (s *Server) handleEditorPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := editorTemplate.Execute(w, nil); err != nil {
		s.log.Error("Failed to render editor page", "error", err)
	}
}

var editorTemplate = template.Must(template.New("editor").Parse(editorHTML))

const editorHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Newsdesk</title>
<script src="https://unpkg.com/html-to-image@1.11.11/dist/html-to-image.js"></script>
<style>
  body { font-family: system-ui, sans-serif; margin: 0; background: #f3f4f6; color: #111827; }
  main { max-width: 960px; margin: 0 auto; padding: 1.5rem; }
  section { background: #fff; border-radius: 0.5rem; padding: 1rem 1.25rem; margin-bottom: 1rem; box-shadow: 0 1px 2px rgba(0,0,0,.08); }
  input, select, textarea, button { font: inherit; }
  input[type=text], input[type=password], input[type=url], textarea { width: 100%; box-sizing: border-box; padding: .5rem; border: 1px solid #d1d5db; border-radius: .375rem; }
  button { padding: .5rem 1rem; border: 0; border-radius: .375rem; background: #1d4ed8; color: #fff; cursor: pointer; }
  button:disabled { background: #9ca3af; cursor: not-allowed; }
  button.secondary { background: #4b5563; }
  .row { display: flex; gap: .5rem; margin: .5rem 0; flex-wrap: wrap; }
  #status { min-height: 1.25rem; color: #b91c1c; }
  #preview { width: 540px; max-width: 100%; aspect-ratio: 1 / 1; background-size: cover; background-position: center; position: relative; overflow: hidden; }
  #preview .headline { position: absolute; left: 0; right: 0; bottom: 2rem; padding: 0 1.5rem; color: #fff; font-weight: 800; font-size: 2rem; line-height: 1.15; text-shadow: 0 2px 6px rgba(0,0,0,.7); text-transform: uppercase; }
  #preview .headline .hl { background: #dc2626; padding: 0 .25rem; }
  .thumbs { display: flex; gap: .5rem; flex-wrap: wrap; }
  .thumbs img { width: 96px; height: 64px; object-fit: cover; border-radius: .25rem; cursor: pointer; border: 2px solid transparent; }
  .thumbs img.active { border-color: #1d4ed8; }
  .topics button { background: #f9fafb; color: #111827; border: 1px solid #d1d5db; text-align: left; width: 100%; margin-bottom: .375rem; }
  .hidden { display: none; }
</style>
</head>
<body>
<main>
  <section id="login">
    <h1>Newsdesk</h1>
    <div class="row">
      <input type="password" id="password" placeholder="Password">
      <button id="loginBtn">Sign in</button>
    </div>
  </section>

  <div id="app" class="hidden">
    <p id="status"></p>

    <section>
      <h2>Generate from article</h2>
      <div class="row">
        <input type="url" id="newsUrl" placeholder="https://...">
        <button id="generateBtn">Generate</button>
      </div>
      <input type="text" id="headline" placeholder="Headline">
      <textarea id="summary" rows="3" placeholder="Summary"></textarea>
      <div class="row"><button id="saveBtn" class="secondary">Save edits</button></div>
    </section>

    <section>
      <h2>Discover topics</h2>
      <div class="row">
        <input type="text" id="query" placeholder="Optional topic filter">
        <select id="region"><option>Bangladesh</option><option>International</option></select>
        <select id="timeFilter"><option value="1d">1 day</option><option value="7d">7 days</option><option value="10d" selected>10 days</option></select>
        <button id="discoverBtn">Discover</button>
        <button id="moreBtn" class="secondary">Load more</button>
        <button id="feedsBtn" class="secondary">From feeds</button>
      </div>
      <div id="topics" class="topics"></div>
    </section>

    <section>
      <h2>Image</h2>
      <div class="row">
        <input type="text" id="imageQuery" placeholder="Image search query">
        <button id="findBtn">Search</button>
        <button id="genImageBtn" class="secondary">Generate with AI</button>
      </div>
      <div id="thumbs" class="thumbs"></div>
    </section>

    <section>
      <h2>Preview</h2>
      <div id="preview"><div class="headline" id="headlinePreview"></div></div>
      <div class="row">
        <button id="queueBtn">Queue</button>
        <button id="postBtn">Post now</button>
      </div>
    </section>

    <section>
      <h2>Settings</h2>
      <input type="text" id="queueWebhookUrl" placeholder="Queue webhook URL">
      <input type="text" id="postNowWebhookUrl" placeholder="Post-now webhook URL">
      <input type="text" id="authToken" placeholder="Webhook auth token">
      <div class="row"><button id="settingsBtn" class="secondary">Save settings</button></div>
    </section>
  </div>
</main>
<script>
const $ = id => document.getElementById(id);
let draft = null;

async function api(path, opts) {
  const res = await fetch(path, Object.assign({headers: {'Content-Type': 'application/json'}}, opts));
  const body = await res.json().catch(() => ({}));
  if (!res.ok) throw new Error(body.error || res.statusText);
  return body;
}

function setStatus(msg) { $('status').textContent = msg || ''; }

function render(resp) {
  if (!resp || !resp.draft) return;
  draft = resp.draft;
  $('headline').value = draft.headline || '';
  $('summary').value = draft.summary || '';
  $('newsUrl').value = draft.news_url || '';
  $('preview').style.backgroundImage = draft.image_url ? 'url(' + JSON.stringify(draft.image_url) + ')' : 'none';

  const p = resp.preview || {lines: [], prefix: '', highlight: ''};
  const el = $('headlinePreview');
  el.textContent = '';
  (p.lines || []).forEach(line => {
    const div = document.createElement('div');
    div.textContent = line;
    el.appendChild(div);
  });
  const last = document.createElement('div');
  if (p.prefix) last.append(p.prefix + ' ');
  if (p.highlight) {
    const hl = document.createElement('span');
    hl.className = 'hl';
    hl.textContent = p.highlight;
    last.appendChild(hl);
  }
  el.appendChild(last);

  const thumbs = $('thumbs');
  thumbs.textContent = '';
  (draft.image_options || []).forEach(url => {
    const img = document.createElement('img');
    img.src = url;
    if (url === draft.image_url) img.className = 'active';
    img.onclick = () => call('/api/images/choose', {imageUrl: url});
    thumbs.appendChild(img);
  });

  setStatus(resp.advisory || '');
}

async function call(path, body) {
  setStatus('');
  try {
    render(await api(path, {method: 'POST', body: JSON.stringify(body || {})}));
  } catch (err) { setStatus(err.message); }
}

function renderTopics(snapshot) {
  const box = $('topics');
  box.textContent = '';
  (snapshot.articles || []).forEach((a, i) => {
    const btn = document.createElement('button');
    btn.textContent = a.title + (a.publicationDate ? ' (' + a.publicationDate + ')' : '');
    btn.onclick = () => call('/api/discover/select', {index: i});
    box.appendChild(btn);
  });
}

async function discover(loadMore, fromFeeds) {
  setStatus('');
  try {
    renderTopics(await api('/api/discover', {method: 'POST', body: JSON.stringify({
      query: $('query').value, region: $('region').value,
      timeFilter: $('timeFilter').value, loadMore: loadMore, fromFeeds: fromFeeds
    })}));
  } catch (err) { setStatus(err.message); }
}

async function publish(status) {
  setStatus('');
  $('queueBtn').disabled = $('postBtn').disabled = true;
  try {
    const node = $('preview');
    const captured = await htmlToImage.toPng(node, {pixelRatio: 2, backgroundColor: '#ffffff'});
    await api('/api/publish', {method: 'POST', body: JSON.stringify({status: status, capturedImage: captured})});
    setStatus(status === 'Post' ? 'Posted!' : 'Queued!');
  } catch (err) { setStatus(err.message); }
  setTimeout(() => { $('queueBtn').disabled = $('postBtn').disabled = false; }, 10000);
}

async function loadSettings() {
  try {
    const s = await api('/api/settings');
    $('queueWebhookUrl').value = s.queueWebhookUrl || '';
    $('postNowWebhookUrl').value = s.postNowWebhookUrl || '';
    $('authToken').value = s.authToken || '';
  } catch (err) { setStatus(err.message); }
}

$('loginBtn').onclick = async () => {
  setStatus('');
  try {
    await api('/api/login', {method: 'POST', body: JSON.stringify({password: $('password').value})});
    $('login').classList.add('hidden');
    $('app').classList.remove('hidden');
    render(await api('/api/draft'));
    renderTopics(await api('/api/discover'));
    loadSettings();
  } catch (err) { setStatus(err.message); alert(err.message); }
};

$('generateBtn').onclick = () => call('/api/generate', {newsUrl: $('newsUrl').value});
$('saveBtn').onclick = async () => {
  setStatus('');
  try {
    const res = await api('/api/draft', {method: 'PATCH', body: JSON.stringify({
      Headline: $('headline').value, Summary: $('summary').value, NewsURL: $('newsUrl').value
    })});
    render(res);
  } catch (err) { setStatus(err.message); }
};
$('discoverBtn').onclick = () => discover(false, false);
$('moreBtn').onclick = () => discover(true, false);
$('feedsBtn').onclick = () => discover(false, true);
$('findBtn').onclick = () => call('/api/images/search', {query: $('imageQuery').value});
$('genImageBtn').onclick = () => call('/api/images/generate', {});
$('queueBtn').onclick = () => publish('Queue');
$('postBtn').onclick = () => publish('Post');
$('settingsBtn').onclick = async () => {
  setStatus('');
  try {
    await api('/api/settings', {method: 'PUT', body: JSON.stringify({
      queueWebhookUrl: $('queueWebhookUrl').value,
      postNowWebhookUrl: $('postNowWebhookUrl').value,
      authToken: $('authToken').value
    })});
    setStatus('Settings saved.');
  } catch (err) { setStatus(err.message); }
};
</script>
</body>
</html>
`
